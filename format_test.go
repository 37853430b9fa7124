package main

import (
	"strings"
	"testing"
)

func TestCategoryLabel(t *testing.T) {
	if got := CategoryLabel(CategoryMeal); got != "Refeição" {
		t.Fatalf("label = %q", got)
	}
	// Confirmed records carry the upper-case form.
	if got := CategoryLabel("CREDITO"); got != "Crédito" {
		t.Fatalf("label = %q", got)
	}
	// Unmapped values pass through untouched.
	if got := CategoryLabel("outro"); got != "outro" {
		t.Fatalf("label = %q", got)
	}
}

func TestFormatAnalysis(t *testing.T) {
	a := Analysis{
		Category:         CategoryCredit,
		Amount:           "R$ 150,00",
		Installments:     3,
		InstallmentLabel: "3x",
		LastFourDigits:   "4321",
	}
	out := FormatAnalysis(a)
	for _, want := range []string{"Tipo: Crédito", "Valor: R$ 150,00", "Parcelas: 3x", "Final do cartão: 4321"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}

	// Debit receipts render as a single cash payment.
	a = Analysis{Category: CategoryDebit, Amount: "R$ 10,00", Installments: 1, InstallmentLabel: "1x"}
	out = FormatAnalysis(a)
	if !strings.Contains(out, "Pagamento: À vista") {
		t.Fatalf("missing cash line in %q", out)
	}
	if strings.Contains(out, "Parcelas") {
		t.Fatalf("unexpected installment line in %q", out)
	}
}

func TestFormatRecord(t *testing.T) {
	rec := TransactionRecord{
		Category:       "REFEICAO",
		Amount:         "R$ 35,00",
		Installments:   1,
		LastFourDigits: "9876",
		Status:         StatusConfirmed,
	}
	out := FormatRecord(rec)
	for _, want := range []string{"Valor: R$ 35,00", "Pagamento: Refeição", "Final do cartão: 9876", "Status: Confirmado"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}
