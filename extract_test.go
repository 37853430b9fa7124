package main

import "testing"

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"label anchored", "Valor: R$ 1.234,56", "R$ 1.234,56"},
		{"currency prefix", "COMPRA R$ 23,33 APROVADA", "R$ 23,33"},
		{"split ocr groups", "COMPRA REFEICAO R 23 33", "R$ 23,33"},
		{"split ocr groups food", "ALIMENTACAO R 120 00", "R$ 120,00"},
		{"valor da compra", "Valor da compra R$ 89,90", "R$ 89,90"},
		{"total keyword", "TOTAL R$ 15,00", "R$ 15,00"},
		{"bare decimal", "pagamento 45,90 aprovado", "R$ 45,90"},
		{"single decimal digit", "valor 10,5 apenas", "R$ 10,5"},
		{"thousands separator", "R$ 12.345,67", "R$ 12.345,67"},
		{"nothing", "comprovante sem numeros", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractAmount(tt.text); got != tt.want {
				t.Fatalf("ExtractAmount(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

// Specific patterns must win over the generic ones regardless of where
// they sit in the text.
func TestExtractAmountPatternPriority(t *testing.T) {
	text := "12,34 algo Valor: R$ 56,78"
	if got := ExtractAmount(text); got != "R$ 56,78" {
		t.Fatalf("expected label-anchored amount to win, got %q", got)
	}
}

func TestExtractLastFourDigits(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"alelo doc number", "alelo doc 645091", "5091"},
		{"doc number", "DOC 12345678", "5678"},
		{"masked card", "Cartao ****1234", "1234"},
		{"long mask", "************9876", "9876"},
		{"final phrasing", "cartao final 8765", "8765"},
		{"terminado em", "terminado em 4321", "4321"},
		{"letter then digits at line end", "APROVADA\nA 1029", "1029"},
		{"isolated at line end", "linha um\n7788\nlinha dois", "7788"},
		{"nothing", "sem digitos aqui", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractLastFourDigits(tt.text); got != tt.want {
				t.Fatalf("ExtractLastFourDigits(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

// Within one pattern the LAST occurrence wins; card digits sit near the
// bottom of receipts.
func TestExtractLastFourDigitsTakesLastMatch(t *testing.T) {
	text := "**** 1111 inicio\nmeio **** 2222"
	if got := ExtractLastFourDigits(text); got != "2222" {
		t.Fatalf("expected last masked match, got %q", got)
	}
}

func TestExtractInstallments(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		category  string
		wantN     int
		wantLabel string
	}{
		{"nx pattern", "3x de R$20,00", CategoryCredit, 3, "3x"},
		{"vezes pattern", "em 5 vezes iguais", CategoryCredit, 5, "5x"},
		{"parcelas pattern", "4 parcelas sem juros", CategoryCredit, 4, "4x"},
		{"parcelado em", "parcelado em 6", CategoryCredit, 6, "6x"},
		{"cash phrase wins", "pagamento à vista em 10x", CategoryCredit, 1, "1x"},
		{"avista no accent", "pagamento a vista", CategoryCredit, 1, "1x"},
		{"non credit always one", "3x de R$20,00", CategoryDebit, 1, "1x"},
		{"meal voucher always one", "qualquer texto", CategoryMeal, 1, "1x"},
		{"no pattern defaults", "compra credito normal", CategoryCredit, 1, "1x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, label := ExtractInstallments(tt.text, tt.category)
			if n != tt.wantN || label != tt.wantLabel {
				t.Fatalf("ExtractInstallments(%q, %s) = (%d, %q), want (%d, %q)",
					tt.text, tt.category, n, label, tt.wantN, tt.wantLabel)
			}
		})
	}
}

func TestAnalyzeReceipt(t *testing.T) {
	c := NewClassifier()
	raw := "COMPROVANTE CREDITO\nValor: R$ 150,00\n3x de R$50,00\nCartao ****4321"

	a := c.AnalyzeReceipt(raw)
	if a.Category != CategoryCredit {
		t.Fatalf("category = %s, want %s", a.Category, CategoryCredit)
	}
	if a.Amount != "R$ 150,00" {
		t.Fatalf("amount = %q", a.Amount)
	}
	if a.LastFourDigits != "4321" {
		t.Fatalf("last four = %q", a.LastFourDigits)
	}
	if a.Installments != 3 || a.InstallmentLabel != "3x" {
		t.Fatalf("installments = %d (%q)", a.Installments, a.InstallmentLabel)
	}
}

// Installment defaulting depends on the classified category: the same
// "2x" text yields 1 installment on a debit receipt.
func TestAnalyzeReceiptNonCreditInstallments(t *testing.T) {
	c := NewClassifier()
	a := c.AnalyzeReceipt("COMPROVANTE DEBITO 2x R$30,00")
	if a.Category != CategoryDebit {
		t.Fatalf("category = %s, want %s", a.Category, CategoryDebit)
	}
	if a.Installments != 1 {
		t.Fatalf("installments = %d, want 1", a.Installments)
	}
}
