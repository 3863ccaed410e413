package bot

import (
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/mess-bot/internal/models"
)

var (
	errBadNumber   = errors.New("not a number")
	errBadPosition = errors.New("not a list number")
)

// extractCommandArgs strips the /command prefix (and optional @botname suffix)
// from a message and returns the remaining trimmed arguments.
func extractCommandArgs(text, command string) string {
	args := strings.TrimSpace(strings.TrimPrefix(text, command))
	if strings.HasPrefix(args, "@") {
		if spaceIdx := strings.Index(args, " "); spaceIdx != -1 {
			args = strings.TrimSpace(args[spaceIdx:])
		} else {
			args = ""
		}
	}
	return args
}

// commandArgs splits the arguments of a command message into fields.
func commandArgs(text, command string) []string {
	return strings.Fields(extractCommandArgs(text, command))
}

// parseAmount reads a non-negative amount such as "540", "12.5" or "12,5".
func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil || d.IsNegative() {
		return decimal.Zero, errBadNumber
	}
	return d, nil
}

// parsePosition reads a 1-based list number.
func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(s, "#"))
	if err != nil || n < 1 {
		return 0, errBadPosition
	}
	return n, nil
}

// parseDay reads a day of the month. The range is checked by the ledger
// against the reporting month.
func parseDay(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errBadNumber
	}
	return n, nil
}

// isDate reports whether s is a YYYY-MM-DD date.
func isDate(s string) bool {
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}

// takeDate removes a trailing date from args. The date may be written
// bare or as @YYYY-MM-DD.
func takeDate(args []string) ([]string, string) {
	if len(args) == 0 {
		return args, ""
	}
	last := strings.TrimPrefix(args[len(args)-1], "@")
	if !isDate(last) {
		return args, ""
	}
	return args[:len(args)-1], last
}

// parseMonth resolves a month name or its three letter prefix in any case.
func parseMonth(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 3 {
		return "", false
	}
	idx := slices.IndexFunc(models.Months, func(m string) bool {
		return strings.HasPrefix(strings.ToLower(m), s)
	})
	if idx < 0 {
		return "", false
	}
	return models.Months[idx], true
}

// splitDescription separates "shopper - description" text.
func splitDescription(s string) (head, desc string) {
	if rest, ok := strings.CutPrefix(s, "- "); ok {
		return "", strings.TrimSpace(rest)
	}
	head, desc, _ = strings.Cut(s, " - ")
	return strings.TrimSpace(head), strings.TrimSpace(desc)
}
