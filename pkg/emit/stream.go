package emit

import "strings"

// TokenKind distinguishes text fragments from block boundaries.
type TokenKind int

const (
	TokenText TokenKind = iota
	TokenBoundary
)

// Token is one entry of the emitted stream.
type Token struct {
	Kind TokenKind
	Text string
}

// Stream is the ordered output of Emit.
type Stream []Token

func (s *Stream) block(text string) {
	if text == "" {
		return
	}
	*s = append(*s,
		Token{Kind: TokenBoundary},
		Token{Kind: TokenText, Text: text},
		Token{Kind: TokenBoundary},
	)
}

// String renders the stream. Consecutive boundaries collapse into a single
// blank line and boundaries at either end are dropped.
func (s Stream) String() string {
	var sb strings.Builder
	pending := false
	for _, tok := range s {
		switch tok.Kind {
		case TokenBoundary:
			pending = sb.Len() > 0
		case TokenText:
			if tok.Text == "" {
				continue
			}
			if pending {
				sb.WriteString("\n\n")
				pending = false
			}
			sb.WriteString(tok.Text)
		}
	}
	return sb.String()
}
