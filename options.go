package descent

import "fmt"

type parseConfig struct {
	start int
	user  interface{}
	lazy  bool
}

// A ParseOption modifies the behaviour of a single Parse call.
type ParseOption func(p *Parser, c *parseConfig) error

// WithContext threads an opaque user value through the parse; actions read it
// back with Result.Context.
func WithContext(user interface{}) ParseOption {
	return func(p *Parser, c *parseConfig) error {
		c.user = user
		return nil
	}
}

// FromRule starts the parse at the named rule instead of the Parser's start
// rule.
func FromRule(name string) ParseOption {
	return func(p *Parser, c *parseConfig) error {
		i, ok := p.index[name]
		if !ok {
			return fmt.Errorf("start rule %q not defined", name)
		}
		c.start = i
		return nil
	}
}

// Lazy makes a failed parse return ErrIncomplete instead of a *ParseError when
// the failure was running out of input rather than rejecting a token: the
// input so far is a valid prefix and more may complete it. Use it to accumulate
// interactive input until a full statement parses.
func Lazy() ParseOption {
	return func(p *Parser, c *parseConfig) error {
		c.lazy = true
		return nil
	}
}
