package main

import (
	"fmt"
	"strings"
)

// Human-readable replies for the message endpoint. The channel client
// renders these verbatim, so keep them plain text.

var categoryLabels = map[string]string{
	CategoryCredit:  "Crédito",
	CategoryDebit:   "Débito",
	CategoryFood:    "Alimentação",
	CategoryMeal:    "Refeição",
	CategoryVoucher: "Voucher",
	CategoryUnknown: "Desconhecido",
}

// CategoryLabel returns the display name for a category, tolerating the
// upper-case form a confirmed record carries.
func CategoryLabel(category string) string {
	if label, ok := categoryLabels[strings.ToLower(category)]; ok {
		return label
	}
	return category
}

// FormatAnalysis summarizes what the pipeline recovered from a receipt,
// shown to the user right after ingestion for review.
func FormatAnalysis(a Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tipo: %s", CategoryLabel(a.Category))
	if a.Amount != "" {
		fmt.Fprintf(&b, "\nValor: %s", a.Amount)
	}
	if a.Category == CategoryCredit || a.Installments > 1 {
		fmt.Fprintf(&b, "\nParcelas: %s", a.InstallmentLabel)
	} else {
		b.WriteString("\nPagamento: À vista")
	}
	if a.LastFourDigits != "" {
		fmt.Fprintf(&b, "\nFinal do cartão: %s", a.LastFourDigits)
	}
	return b.String()
}

// FormatRecord renders one transaction record for a status reply.
func FormatRecord(rec TransactionRecord) string {
	status := "Pendente"
	switch rec.Status {
	case StatusConfirmed:
		status = "Confirmado"
	case StatusCancelled:
		status = "Cancelado"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Valor: %s\n", rec.Amount)
	fmt.Fprintf(&b, "Pagamento: %s\n", CategoryLabel(rec.Category))
	fmt.Fprintf(&b, "Parcelas: %d\n", rec.Installments)
	fmt.Fprintf(&b, "Final do cartão: %s\n", rec.LastFourDigits)
	fmt.Fprintf(&b, "Status: %s", status)
	return b.String()
}

const editHelpReply = "Para editar use: 3 <campo> <valor>\n" +
	"Campos: tipo, valor, parcelas, final, pagador\n" +
	"Exemplo: 3 valor R$ 25,00"

const noPendingReply = "Nenhum comprovante pendente. Envie a foto de um comprovante para começar."
