package voucher

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func fixedGenerator() *Generator {
	at := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)
	return &Generator{Now: func() time.Time { return at }, Location: time.UTC}
}

func TestFuelVoucher(t *testing.T) {
	g := fixedGenerator()
	v := FuelVoucher{
		Nome:             "João Silva",
		Telefone:         "5511999998888",
		Placa:            "ABC1D23",
		Solicitacao:      "Combustível",
		ValorCombustivel: decimal.NewNullDecimal(decimal.RequireFromString("50.00")),
		DataCriacao:      time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		Supervisor:       &SupervisorRef{Codigo: "1234", Nome: "Carlos"},
	}

	out, err := g.Fuel(v)
	if err != nil {
		t.Fatalf("Fuel() error = %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", out[:8])
	}

	again, err := g.Fuel(v)
	if err != nil {
		t.Fatalf("second Fuel() error = %v", err)
	}
	if !bytes.Equal(out, again) {
		t.Error("same input and clock produced different documents")
	}
}

func TestFuelVoucherWithoutAmountOrSupervisor(t *testing.T) {
	out, err := fixedGenerator().Fuel(FuelVoucher{Nome: "Ana", Solicitacao: "Outro"})
	if err != nil {
		t.Fatalf("Fuel() error = %v", err)
	}
	if len(out) == 0 {
		t.Fatal("empty document")
	}
}

func TestFuelVoucherRequiresName(t *testing.T) {
	_, err := fixedGenerator().Fuel(FuelVoucher{Nome: "  "})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPartsVoucher(t *testing.T) {
	g := fixedGenerator()
	out, err := g.Parts(PartsVoucher{
		Nome:           "Maria",
		Telefone:       "5521988887777",
		Placa:          "XYZ9K87",
		Matricula:      "M-001",
		DescricaoPecas: "Kit relação completo (coroa, pinhão e corrente) para CG 160, mais pastilhas de freio dianteiras e óleo 1L",
		ValorPeca:      decimal.RequireFromString("320.50"),
		Loja:           "Moto Peças Centro",
	})
	if err != nil {
		t.Fatalf("Parts() error = %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
}

func TestPartsVoucherValidation(t *testing.T) {
	g := fixedGenerator()
	cases := map[string]PartsVoucher{
		"missing description": {Nome: "Maria", ValorPeca: decimal.NewFromInt(10)},
		"zero value":          {Nome: "Maria", DescricaoPecas: "pneu"},
		"missing name":        {DescricaoPecas: "pneu", ValorPeca: decimal.NewFromInt(10)},
	}
	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := g.Parts(v); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestReport(t *testing.T) {
	g := fixedGenerator()
	out, err := g.Report(ReportData{
		Nome:            "João Silva",
		Telefone:        "11999998888",
		TipoSolicitacao: "Combustível",
		Valor:           decimal.NewNullDecimal(decimal.NewFromInt(50)),
		Status:          "Fase de aprovação",
		AprovacaoSup:    "pendente",
		DataCriacao:     "2024-03-09",
	})
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}

	if _, err := g.Report(ReportData{Nome: "x"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing fields, got %v", err)
	}
}

func TestMoney(t *testing.T) {
	if got := Money(decimal.RequireFromString("50")); got != "R$ 50.00" {
		t.Errorf("Money() = %q", got)
	}
}
