package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"go.uber.org/goleak"

	sureschema "github.com/reoring/sureschema"
	"github.com/reoring/sureschema/dsl"
	"github.com/reoring/sureschema/middleware"
	"github.com/reoring/sureschema/validate"
)

func handler(t *testing.T) http.Handler {
	t.Helper()
	user := dsl.Object(map[string]sureschema.Node{
		"id":    dsl.String().MinLength(1),
		"email": dsl.String().Format(dsl.FormatEmail),
	}).Additional(false)
	v, err := sureschema.Compile(validate.New(), user)
	if err != nil {
		t.Fatal(err)
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.DecodedFromContext(r.Context()); !ok {
			t.Error("decoded body missing from context")
		}
		body, _ := io.ReadAll(r.Body)
		if len(body) == 0 {
			t.Error("body was not restored")
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return middleware.ValidateJSON(v, middleware.DefaultOptions())(next)
}

func do(h http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	h.ServeHTTP(rec, req)
	return rec
}

func TestValidateJSON(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := handler(t)

	if rec := do(h, `{"id":"u1","email":"a@example.com"}`); rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	rec := do(h, `{"email": 1, "zzz": true}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload struct {
		Issues []sureschema.Issue `json:"issues"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	codes := map[string]bool{}
	for _, it := range payload.Issues {
		codes[it.Code] = true
	}
	for _, c := range []string{sureschema.CodeRequired, sureschema.CodeInvalidType, sureschema.CodeUnknownKey} {
		if !codes[c] {
			t.Errorf("missing issue code %s in %s", c, rec.Body)
		}
	}

	if rec := do(h, `{"id":"a","id":"b","email":"a@example.com"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate keys: status = %d", rec.Code)
	}
	if rec := do(h, `{"id":`); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed: status = %d", rec.Code)
	}
}

func TestValidateJSON_BodyLimit(t *testing.T) {
	defer goleak.VerifyNone(t)
	v, err := sureschema.Compile(validate.New(), dsl.String())
	if err != nil {
		t.Fatal(err)
	}
	h := middleware.ValidateJSON(v, middleware.Options{MaxBodyBytes: 4})(http.NotFoundHandler())
	if rec := do(h, `"much too long"`); rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", rec.Code)
	}
}
