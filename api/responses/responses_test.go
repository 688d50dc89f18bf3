package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/gymstackhq/gymstack-backend/pkg/errors"
	"github.com/gymstackhq/gymstack-backend/pkg/types"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) types.Envelope {
	t.Helper()
	var env types.Envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestWriteSuccessEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"hello": "world"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	env := decode(t, w)
	if !env.Success {
		t.Fatal("expected success=true")
	}
	data, ok := env.Data.(map[string]any)
	if !ok || data["hello"] != "world" {
		t.Fatalf("unexpected data: %+v", env.Data)
	}
}

func TestWriteMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteMessage(w, http.StatusCreated, "account created")

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	env := decode(t, w)
	if !env.Success || env.Message != "account created" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestWriteErrorMapsCodes(t *testing.T) {
	cases := []struct {
		code       pkgerrors.Code
		wantStatus int
		wantMsg    string
	}{
		{pkgerrors.CodeValidation, http.StatusBadRequest, "name is required"},
		{pkgerrors.CodeUnauthorized, http.StatusUnauthorized, "name is required"},
		{pkgerrors.CodeForbidden, http.StatusForbidden, "name is required"},
		{pkgerrors.CodeNotFound, http.StatusNotFound, "name is required"},
		{pkgerrors.CodeConflict, http.StatusConflict, "name is required"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		WriteError(context.Background(), nil, w, pkgerrors.New(tc.code, "name is required"))
		if w.Code != tc.wantStatus {
			t.Fatalf("code %s: expected %d, got %d", tc.code, tc.wantStatus, w.Code)
		}
		env := decode(t, w)
		if env.Success {
			t.Fatalf("code %s: expected success=false", tc.code)
		}
		if env.Message != tc.wantMsg {
			t.Fatalf("code %s: expected message %q, got %q", tc.code, tc.wantMsg, env.Message)
		}
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, pkgerrors.Wrap(pkgerrors.CodeInternal, errors.New("pq: connection refused"), "load account"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	env := decode(t, w)
	if env.Message != "internal server error" {
		t.Fatalf("internal detail leaked: %q", env.Message)
	}
}

func TestWriteErrorUntypedBecomesInternal(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestWriteCSVSetsAttachmentHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	WriteCSV(context.Background(), nil, w, "members.csv", func(w http.ResponseWriter) error {
		_, err := w.Write([]byte("a,b\n1,2\n"))
		return err
	})
	if got := w.Header().Get("Content-Type"); got != "text/csv" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="members.csv"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if w.Body.String() != "a,b\n1,2\n" {
		t.Fatalf("unexpected body %q", w.Body.String())
	}
}
