package i18n

import "testing"

func TestGetCatalogFallsBackToBase(t *testing.T) {
	if got := GetCatalog("missing-locale").Locale(); got != BaseLocale {
		t.Fatalf("locale = %q, want %q", got, BaseLocale)
	}
}

func TestEveryCodeIsTranslated(t *testing.T) {
	for code := range enUSMessages {
		if _, ok := jaJPMessages[code]; !ok {
			t.Fatalf("ja-JP is missing %s", code)
		}
	}
}

func TestFormat(t *testing.T) {
	cat := NewCatalog("test", map[Code]string{
		"greet":  "hello {{.Name}}",
		"broken": "{{ if .Name }}",
	})
	tests := []struct {
		name     string
		code     Code
		metadata map[string]string
		want     string
	}{
		{name: "unknown code", code: "unknown", want: "unknown"},
		{name: "metadata", code: "greet", metadata: map[string]string{"Name": "Ume"}, want: "hello Ume"},
		{name: "missing metadata", code: "greet", want: "hello "},
		{name: "unparsable template", code: "broken", metadata: map[string]string{"Name": "X"}, want: "{{ if .Name }}"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := cat.Format(tc.code, tc.metadata); got != tc.want {
				t.Fatalf("Format = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLocalize(t *testing.T) {
	tests := []struct {
		accept     string
		wantLocale string
		want       string
	}{
		{accept: "", wantLocale: BaseLocale, want: "Card 12 is not in hand"},
		{accept: "fr-FR", wantLocale: BaseLocale, want: "Card 12 is not in hand"},
		{accept: "ja,en;q=0.5", wantLocale: "ja-JP", want: jaJPFormat(t, CodeCardNotInHand, "12")},
	}
	for _, tc := range tests {
		locale, got := Localize(tc.accept, CodeCardNotInHand, map[string]string{"CardID": "12"})
		if locale != tc.wantLocale || got != tc.want {
			t.Fatalf("Localize(%q) = %q, %q, want %q, %q", tc.accept, locale, got, tc.wantLocale, tc.want)
		}
	}
}

func TestRegisterCatalog(t *testing.T) {
	custom := NewCatalog("x-test", map[Code]string{"code": "ok"})
	RegisterCatalog("x-test", custom)
	t.Cleanup(func() {
		catalogsMu.Lock()
		delete(catalogs, "x-test")
		catalogsMu.Unlock()
	})
	if got := GetCatalog("x-test"); got != custom {
		t.Fatal("expected registered catalog")
	}
}

func jaJPFormat(t *testing.T, code Code, cardID string) string {
	t.Helper()
	return NewCatalog("ja-JP", jaJPMessages).Format(code, map[string]string{"CardID": cardID})
}
