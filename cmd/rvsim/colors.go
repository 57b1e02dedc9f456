package main

import (
	"regexp"

	"github.com/logrusorgru/aurora/v4"
)

var reWord = regexp.MustCompile(`0x[0-9a-f]{8}`)

func colorizeError(message string) string {
	return aurora.Colorize(message, aurora.RedFg|aurora.BrightFg|aurora.BoldFm).String()
}

// colorizeDump highlights the non-zero values of a text dump.
func colorizeDump(dump string) string {
	return reWord.ReplaceAllStringFunc(dump, func(word string) string {
		if word == "0x00000000" {
			return word
		}
		return aurora.Colorize(word, aurora.YellowFg|aurora.BrightFg).String()
	})
}
