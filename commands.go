package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The review protocol the original bot speaks over the messaging channel:
//
//	1                    confirm the pending receipt
//	2                    cancel it
//	3 <campo> <valor>    edit one field (also "editar <campo> <valor>")
//	status               list your confirmed receipts
//
// Anything else is ignored by the router.

type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandConfirm
	CommandCancel
	CommandEdit
	CommandStatus
)

var editCommandRE = regexp.MustCompile(`(?i)^(?:3|editar)\s+(\w+)\s+(.+)$`)

// ParseCommand classifies a raw inbound message.
func ParseCommand(text string) CommandKind {
	t := strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.HasPrefix(t, "3"), strings.HasPrefix(t, "editar"):
		return CommandEdit
	case strings.HasPrefix(t, "1"):
		return CommandConfirm
	case strings.HasPrefix(t, "2"):
		return CommandCancel
	case strings.HasPrefix(t, "status"), strings.HasPrefix(t, "meus cartoes"):
		return CommandStatus
	}
	return CommandNone
}

// ParseEditCommand turns "3 valor R$ 25,00" into a FieldUpdate. Field
// names are the Portuguese ones users type; anything outside the fixed
// editable set is rejected with ErrUnknownField instead of silently
// ignored.
func ParseEditCommand(text string) (FieldUpdate, error) {
	m := editCommandRE.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return FieldUpdate{}, fmt.Errorf("malformed edit command")
	}
	field := strings.ToLower(m[1])
	value := strings.TrimSpace(m[2])

	var update FieldUpdate
	switch field {
	case "tipo":
		update.Category = &value
	case "valor":
		update.Amount = &value
	case "parcelas":
		n, err := strconv.Atoi(value)
		if err != nil {
			return FieldUpdate{}, fmt.Errorf("parcelas must be a number, got '%s'", value)
		}
		update.Installments = &n
	case "final":
		update.LastFourDigits = &value
	case "pagador":
		update.Payer = &value
	default:
		return FieldUpdate{}, fmt.Errorf("%w: '%s'", ErrUnknownField, field)
	}
	return update, nil
}
