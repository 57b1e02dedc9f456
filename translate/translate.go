// Package translate formats user-facing messages for the simulator in the
// language of the host locale.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DEFAULT_LOCALE is used when the host reports no locale.
const DEFAULT_LOCALE = "en-US"

var (
	current language.Tag
	printer *message.Printer
)

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("rv32sim: locale: %v", err)
	}

	SetLocale(locales...)
}

// SetLocale selects the message language from an ordered list of BCP 47
// tags. An empty list selects DEFAULT_LOCALE.
func SetLocale(locales ...string) {
	if len(locales) == 0 {
		locales = []string{DEFAULT_LOCALE}
	}

	current = message.MatchLanguage(locales...)
	printer = message.NewPrinter(current)
}

// Language returns the language currently used for messages.
func Language() language.Tag {
	return current
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
