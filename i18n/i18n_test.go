/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init("en"); err != nil {
		t.Fatalf("Init(en): %v", err)
	}
	return WithLocalizer(context.Background(), NewLocalizer(lang))
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "Submit"); got != "Submit Matches" {
		t.Errorf("T(Submit) = %q, want 'Submit Matches'", got)
	}
}

func TestTranslateSpanish(t *testing.T) {
	ctx := initLang(t, "es")

	if got := T(ctx, "Retry"); got != "Reintentar" {
		t.Errorf("T(Retry) = %q, want 'Reintentar'", got)
	}
}

func TestAutoRetryMessage(t *testing.T) {
	ctx := initLang(t, "en")

	shown := Td(ctx, "AutoRetry", map[string]any{"HiddenCorrect": false})
	want := "Great! All your matches are correct. Continue matching the remaining items."
	if shown != want {
		t.Errorf("Td(AutoRetry, false) = %q, want %q", shown, want)
	}

	hidden := Td(ctx, "AutoRetry", map[string]any{"HiddenCorrect": true})
	want = "Great! All your matches are correct. Correct matches hidden. Continue matching the remaining items."
	if hidden != want {
		t.Errorf("Td(AutoRetry, true) = %q, want %q", hidden, want)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "es")

	if got := Tp(ctx, "MatchedCount", 1, map[string]any{"Total": 8}); got != "1 de 8 relacionado" {
		t.Errorf("Tp(MatchedCount, 1) = %q", got)
	}

	if got := Tp(ctx, "MatchedCount", 3, map[string]any{"Total": 8}); got != "3 de 8 relacionados" {
		t.Errorf("Tp(MatchedCount, 3) = %q", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "NonExistentKey"); got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestUnsupportedDefault(t *testing.T) {
	if err := Init("not a tag!"); err == nil {
		t.Error("Init accepted a malformed tag")
	}

	if err := Init("fr"); err == nil {
		t.Error("Init accepted a language without translations")
	}
}

func TestFailedInitKeepsBundle(t *testing.T) {
	initLang(t, "en")

	if err := Init("de"); err == nil {
		t.Fatal("Init accepted a language without translations")
	}

	if got := Languages(); !slices.Equal(got, []string{"en", "es"}) {
		t.Errorf("Languages() = %v, want [en es]", got)
	}

	ctx := WithLocalizer(context.Background(), NewLocalizer("de"))
	if got := T(ctx, "Submit"); got != "Submit Matches" {
		t.Errorf("T(Submit) for de = %q, want the English fallback", got)
	}
}

func TestRegionalDefault(t *testing.T) {
	if err := Init("es-MX"); err != nil {
		t.Fatalf("Init(es-MX) = %v", err)
	}
	t.Cleanup(func() { _ = Init("en") })

	if got := Languages(); len(got) == 0 || got[0] != "es" {
		t.Errorf("Languages() = %v, want es first", got)
	}

	if got := T(context.Background(), "Submit"); got != "Enviar" {
		t.Errorf("T(Submit) = %q, want Enviar", got)
	}
}

func TestNegotiate(t *testing.T) {
	initLang(t, "en")

	tests := map[string]string{
		"":                        "en",
		"es-MX,es;q=0.9,en;q=0.8": "es",
		"de-DE":                   "en",
		"en-GB":                   "en",
	}

	for accept, want := range tests {
		if got := Negotiate(accept); got != want {
			t.Errorf("Negotiate(%q) = %q, want %q", accept, got, want)
		}
	}
}

func TestMiddleware(t *testing.T) {
	initLang(t, "en")

	var got string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = T(r.Context(), "ClearAll")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "es-ES,es;q=0.9")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "Borrar todo" {
		t.Errorf("Accept-Language es: got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/?lang=en", nil)
	req.Header.Set("Accept-Language", "es")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "Clear All" {
		t.Errorf("lang=en: got %q", got)
	}
}
