package tui

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/muesli/termenv"
)

// Highlight colors source for the terminal described by profile. Plain
// terminals and unknown languages get the source back unchanged.
func Highlight(source, language string, profile termenv.Profile) string {
	formatter := formatterFor(profile)
	if formatter == nil {
		return source
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		return source
	}
	lexer = chroma.Coalesce(lexer)

	style := chromastyles.Get("monokai")
	if style == nil {
		style = chromastyles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return source
	}
	return buf.String()
}

func formatterFor(profile termenv.Profile) chroma.Formatter {
	switch profile {
	case termenv.TrueColor:
		return formatters.Get("terminal16m")
	case termenv.ANSI256:
		return formatters.Get("terminal256")
	case termenv.ANSI:
		return formatters.Get("terminal16")
	default:
		return nil
	}
}
