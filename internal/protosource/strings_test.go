package protosource

import "testing"

func TestEscapeString(t *testing.T) {
	cases := map[string]string{
		"hello":        "hello",
		`hello\world`:  `hello\\world`,
		`hello"world`:  `hello\"world`,
		"hello\nworld": `hello\nworld`,
	}
	for in, want := range cases {
		if got := escapeString(in); got != want {
			t.Errorf("escapeString(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestToLowerCamelCase(t *testing.T) {
	cases := map[string]string{
		"hello_world":    "helloWorld",
		"my_field_name":  "myFieldName",
		"simple":         "simple",
		"already_Mixed_": "alreadyMixed",
	}
	for in, want := range cases {
		if got := toLowerCamelCase(in); got != want {
			t.Errorf("toLowerCamelCase(%q) = %q, want %q", in, got, want)
		}
	}
}
