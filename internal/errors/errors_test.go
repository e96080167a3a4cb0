package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "transition error",
			code:    "E201",
			wantMsg: "Server transition not configured",
			wantCat: CategoryConfig,
		},
		{
			name:    "platform error",
			code:    "E202",
			wantMsg: "Platform already destroyed",
			wantCat: CategoryPlatform,
		},
		{
			name:    "store error",
			code:    "E301",
			wantMsg: "Snapshot store operation failed",
			wantCat: CategoryStore,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryRender, "selector %q not found", "app-root")
	if err.Message != `selector "app-root" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryRender {
		t.Errorf("Category = %q, want %q", err.Category, CategoryRender)
	}
}

func TestEngineError_Error(t *testing.T) {
	err := New("E203")
	if got, want := err.Error(), "E203: Module already bootstrapped on this platform"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := New("E301").Wrap(fmt.Errorf("disk full"))
	if !strings.HasSuffix(wrapped.Error(), ": disk full") {
		t.Errorf("Error() = %q, want wrapped cause", wrapped.Error())
	}

	plain := &EngineError{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestEngineError_IsMatchesCode(t *testing.T) {
	err := fmt.Errorf("render /: %w", New("E201").WithDetail("module shop"))

	if !stderrors.Is(err, New("E201")) {
		t.Error("errors.Is should match by code through wrapping")
	}
	if stderrors.Is(err, New("E202")) {
		t.Error("errors.Is should not match a different code")
	}

	a := Newf(CategoryRender, "a")
	b := Newf(CategoryRender, "a")
	if stderrors.Is(a, b) {
		t.Error("uncoded errors should only match themselves")
	}
	if !stderrors.Is(a, a) {
		t.Error("uncoded error should match itself")
	}
}

func TestEngineError_Wrap(t *testing.T) {
	inner := stderrors.New("boom")
	outer := New("E207").Wrap(inner)

	if outer.Unwrap() != inner {
		t.Error("Unwrap() should return wrapped error")
	}
	if !stderrors.Is(outer, inner) {
		t.Error("errors.Is should reach the wrapped error")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E301") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	ee := New("E302")
	if FromError(fmt.Errorf("ctx: %w", ee), "E301") != ee {
		t.Error("FromError should return the wrapped EngineError as-is")
	}

	std := stderrors.New("plain")
	got := FromError(std, "E301")
	if got.Code != "E301" || got.Wrapped != std {
		t.Errorf("FromError = %+v, want E301 wrapping std error", got)
	}
}

func TestHasCode(t *testing.T) {
	err := New("E205").Wrap(New("E120").Wrap(stderrors.New("io")))
	if !HasCode(err, "E205") || !HasCode(err, "E120") {
		t.Error("HasCode should find both codes in the chain")
	}
	if HasCode(err, "E201") {
		t.Error("HasCode found a code that is not present")
	}
	if HasCode(stderrors.New("x"), "E201") {
		t.Error("HasCode on a plain error should be false")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E201").
		WithSuggestion(`Import app.ServerTransition("shop") in the root module`)
	out := err.Format()

	for _, want := range []string{
		"ERROR E201: Server transition not configured",
		"Hint: Import app.ServerTransition",
		"Learn more: https://vango.dev/docs/engine/errors/E201",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E202").WithDetail("render /cart")
	if got, want := err.FormatCompact(), "E202: Platform already destroyed (render /cart)"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestPrint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Print(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("Print() = %q", buf.String())
	}

	buf.Reset()
	Print(&buf, fmt.Errorf("wrapped: %w", New("E141")))
	if !strings.Contains(buf.String(), "E141: Configuration file not found") {
		t.Errorf("Print() = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six seven", 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six seven" {
		t.Errorf("wrapText lost words: %v", lines)
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
}

func TestRegistryCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("registry is empty")
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] > codes[i] {
			t.Fatalf("codes not sorted: %v", codes)
		}
	}
	for _, code := range codes {
		tmpl, _ := GetTemplate(code)
		if tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("code %s has incomplete template", code)
		}
	}
}
