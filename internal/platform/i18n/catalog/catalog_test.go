package catalog

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadEmbeddedHasExpectedLocales(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	for _, locale := range []string{BaseLocale, "ja-JP"} {
		if !bundle.HasLocale(locale) {
			t.Fatalf("expected locale %s", locale)
		}
	}
	en := bundle.NamespaceMessages(BaseLocale, "simulate")
	ja := bundle.NamespaceMessages("ja-JP", "simulate")
	if len(en) == 0 {
		t.Fatal("expected en-US simulate messages")
	}
	for key := range en {
		if _, ok := ja[key]; !ok {
			t.Fatalf("ja-JP is missing %q", key)
		}
	}
}

func TestLoadFromFSRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name string
		fs   fstest.MapFS
		want string
	}{
		{
			name: "no files",
			fs:   fstest.MapFS{},
			want: "no catalog files",
		},
		{
			name: "locale mismatch",
			fs: fstest.MapFS{
				"locales/en-US/cli.yaml": {Data: []byte("locale: ja-JP\nnamespace: cli\nmessages:\n  cli.a: \"a\"\n")},
			},
			want: "must match path locale",
		},
		{
			name: "namespace mismatch",
			fs: fstest.MapFS{
				"locales/en-US/cli.yaml": {Data: []byte("locale: en-US\nnamespace: web\nmessages:\n  web.a: \"a\"\n")},
			},
			want: "must match filename namespace",
		},
		{
			name: "key outside namespace",
			fs: fstest.MapFS{
				"locales/en-US/cli.yaml": {Data: []byte("locale: en-US\nnamespace: cli\nmessages:\n  other.a: \"a\"\n")},
			},
			want: "must start with",
		},
		{
			name: "missing base locale",
			fs: fstest.MapFS{
				"locales/ja-JP/cli.yaml": {Data: []byte("locale: ja-JP\nnamespace: cli\nmessages:\n  cli.a: \"a\"\n")},
			},
			want: "base locale",
		},
		{
			name: "malformed yaml",
			fs: fstest.MapFS{
				"locales/en-US/cli.yaml": {Data: []byte("locale: [\n")},
			},
			want: "parse catalog",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFromFS(tc.fs)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want containing %q", err, tc.want)
			}
		})
	}
}

func TestMessageFallsBackToBaseLocale(t *testing.T) {
	bundle, err := LoadFromFS(fstest.MapFS{
		"locales/en-US/cli.yaml": {Data: []byte("locale: en-US\nnamespace: cli\nmessages:\n  cli.hello: \"Hello\"\n  cli.bye: \"Bye\"\n")},
		"locales/ja-JP/cli.yaml": {Data: []byte("locale: ja-JP\nnamespace: cli\nmessages:\n  cli.hello: \"こんにちは\"\n")},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, _ := bundle.Message("ja-JP", "cli.hello"); got != "こんにちは" {
		t.Fatalf("hello = %q, want こんにちは", got)
	}
	if got, _ := bundle.Message("ja-JP", "cli.bye"); got != "Bye" {
		t.Fatalf("bye = %q, want Bye", got)
	}
	if _, ok := bundle.Message("ja-JP", "cli.missing"); ok {
		t.Fatal("expected missing key")
	}
}

func TestMatch(t *testing.T) {
	bundle := Default()
	tests := []struct {
		pref string
		want string
	}{
		{"ja", "ja-JP"},
		{"ja-JP", "ja-JP"},
		{"en", BaseLocale},
		{"fr-FR", BaseLocale},
		{"", BaseLocale},
	}
	for _, tc := range tests {
		if got := bundle.Match(tc.pref); got != tc.want {
			t.Fatalf("Match(%q) = %q, want %q", tc.pref, got, tc.want)
		}
	}
}

func TestPrinterResolvesRegisteredKeys(t *testing.T) {
	bundle := Default()
	if got := bundle.Printer("en").Sprintf("simulate.single.score", 30.0); got != "Score: 30\n" {
		t.Fatalf("en = %q, want %q", got, "Score: 30\n")
	}
	if got := bundle.Printer("ja").Sprintf("simulate.single.score", 30.0); got != "スコア: 30\n" {
		t.Fatalf("ja = %q, want %q", got, "スコア: 30\n")
	}
}
