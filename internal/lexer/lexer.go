package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Lexer scans a source string one token at a time.
//
// The whole file is held in memory; start and current delimit the token
// being scanned and lineStart lets columns be computed on demand.
type Lexer struct {
	source    string
	filename  string
	start     int
	current   int
	line      int
	lineStart int
}

// New returns a lexer positioned at the beginning of source.
func New(source, filename string) *Lexer {
	return &Lexer{
		source:   source,
		filename: filename,
		line:     1,
	}
}

// NextToken scans and returns the next token. At end of input it keeps
// returning TokenEOF. On a lexical error it returns a TokenInvalid token
// and an error that carries the offending position.
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespace()
	l.start = l.current

	if l.isAtEnd() {
		return l.makeToken(TokenEOF, ""), nil
	}

	ch := l.advance()

	if isLetter(ch) {
		return l.scanIdentifier(), nil
	}
	if isDigit(ch) {
		return l.scanNumber(), nil
	}

	switch ch {
	case '(':
		return l.makeToken(TokenLeftParen, "("), nil
	case ')':
		return l.makeToken(TokenRightParen, ")"), nil
	case '{':
		return l.makeToken(TokenLeftBrace, "{"), nil
	case '}':
		return l.makeToken(TokenRightBrace, "}"), nil
	case ';':
		return l.makeToken(TokenSemicolon, ";"), nil
	case ',':
		return l.makeToken(TokenComma, ","), nil
	case '+':
		return l.makeToken(TokenPlus, "+"), nil
	case '-':
		return l.makeToken(TokenMinus, "-"), nil
	case '*':
		return l.makeToken(TokenStar, "*"), nil
	case '/':
		if l.match('/') {
			return l.scanLineComment(), nil
		}
		if l.match('*') {
			return l.scanBlockComment()
		}
		return l.makeToken(TokenSlash, "/"), nil
	case '=':
		if l.match('=') {
			return l.makeToken(TokenEqual, "=="), nil
		}
		return l.makeToken(TokenAssign, "="), nil
	case '!':
		if l.match('=') {
			return l.makeToken(TokenNotEqual, "!="), nil
		}
		return l.makeToken(TokenNot, "!"), nil
	case '<':
		if l.match('=') {
			return l.makeToken(TokenLessEqual, "<="), nil
		}
		return l.makeToken(TokenLess, "<"), nil
	case '>':
		if l.match('=') {
			return l.makeToken(TokenGreaterEqual, ">="), nil
		}
		return l.makeToken(TokenGreater, ">"), nil
	case '&':
		if l.match('&') {
			return l.makeToken(TokenAnd, "&&"), nil
		}
	case '|':
		if l.match('|') {
			return l.makeToken(TokenOr, "||"), nil
		}
	}

	return l.makeToken(TokenInvalid, l.source[l.start:l.current]),
		l.error(fmt.Sprintf("unexpected character: %q", ch))
}

// Tokenize scans the whole source, dropping comments. Scanning stops at
// the first lexical error; the tokens read so far are returned with it.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return tokens, err
		}
		if tok.Type == TokenComment {
			continue
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) advance() rune {
	ch, size := utf8.DecodeRuneInString(l.source[l.current:])
	l.current += size
	return ch
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.source[l.current:])
	return ch
}

func (l *Lexer) peekNext() rune {
	if l.isAtEnd() {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.source[l.current:])
	if l.current+size >= len(l.source) {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.source[l.current+size:])
	return ch
}

func (l *Lexer) match(expected rune) bool {
	if l.peek() != expected || l.isAtEnd() {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func (l *Lexer) newline() {
	l.line++
	l.lineStart = l.current
}

func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		switch l.peek() {
		case ' ', '\r', '\t':
			l.advance()
		case '\n':
			l.advance()
			l.newline()
		default:
			return
		}
	}
}

func (l *Lexer) scanIdentifier() Token {
	for isLetter(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}
	text := l.source[l.start:l.current]
	return l.makeToken(LookupKeyword(text), text)
}

// scanNumber reads an INTEGER or, when a '.' is followed by a digit, a
// FLOAT. Signs are not part of the literal.
func (l *Lexer) scanNumber() Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	tokenType := TokenInteger
	if l.peek() == '.' && isDigit(l.peekNext()) {
		tokenType = TokenFloat
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	return l.makeToken(tokenType, l.source[l.start:l.current])
}

func (l *Lexer) scanLineComment() Token {
	for !l.isAtEnd() && l.peek() != '\n' {
		l.advance()
	}
	return l.makeToken(TokenComment, l.source[l.start:l.current])
}

// scanBlockComment reads a possibly nested /* */ comment.
func (l *Lexer) scanBlockComment() (Token, error) {
	startLine, startLineStart := l.line, l.lineStart
	depth := 1
	for !l.isAtEnd() && depth > 0 {
		switch {
		case l.peek() == '/' && l.peekNext() == '*':
			l.advance()
			l.advance()
			depth++
		case l.peek() == '*' && l.peekNext() == '/':
			l.advance()
			l.advance()
			depth--
		case l.peek() == '\n':
			l.advance()
			l.newline()
		default:
			l.advance()
		}
	}

	tok := Token{
		Type:   TokenComment,
		Lexeme: l.source[l.start:l.current],
		Position: Position{
			Filename: l.filename,
			Line:     startLine,
			Column:   utf8.RuneCountInString(l.source[startLineStart:l.start]) + 1,
			Offset:   l.start,
		},
		Length: l.current - l.start,
	}
	if depth > 0 {
		tok.Type = TokenInvalid
		return tok, fmt.Errorf("%s: unterminated block comment", tok.Position)
	}
	return tok, nil
}

func (l *Lexer) makeToken(tokenType TokenType, lexeme string) Token {
	return Token{
		Type:     tokenType,
		Lexeme:   lexeme,
		Position: l.currentPosition(),
		Length:   l.current - l.start,
	}
}

func (l *Lexer) currentPosition() Position {
	return Position{
		Filename: l.filename,
		Line:     l.line,
		Column:   utf8.RuneCountInString(l.source[l.lineStart:l.start]) + 1,
		Offset:   l.start,
	}
}

func (l *Lexer) error(message string) error {
	return fmt.Errorf("%s: %s", l.currentPosition(), message)
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
