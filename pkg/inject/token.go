package inject

// Token identifies a service. Tokens compare by identity, so two tokens with
// the same name are distinct keys.
type Token struct {
	name string
}

// NewToken creates a token. The name is only used in error messages.
func NewToken(name string) *Token {
	return &Token{name: name}
}

// String returns the token's debug name.
func (t *Token) String() string {
	if t == nil {
		return "<nil token>"
	}
	return t.name
}

type providerKind uint8

const (
	kindValue providerKind = iota
	kindFactory
	kindMulti
	kindExisting
)

// Provider binds a token to a way of producing its service.
type Provider struct {
	Token *Token

	kind     providerKind
	value    any
	factory  func(Resolver) (any, error)
	existing *Token
}

// Value provides a ready instance.
func Value(tok *Token, v any) Provider {
	return Provider{Token: tok, kind: kindValue, value: v}
}

// Factory provides an instance built on first resolution. The factory
// resolves its own dependencies through r, starting at the injector that owns
// the provider. Built instances implementing io.Closer are closed when the
// injector is destroyed.
func Factory(tok *Token, fn func(r Resolver) (any, error)) Provider {
	return Provider{Token: tok, kind: kindFactory, factory: fn}
}

// Multi contributes v to the ordered collection resolved for tok.
func Multi(tok *Token, v any) Provider {
	return Provider{Token: tok, kind: kindMulti, value: v}
}

// Existing makes tok resolve to whatever target resolves to.
func Existing(tok, target *Token) Provider {
	return Provider{Token: tok, kind: kindExisting, existing: target}
}
