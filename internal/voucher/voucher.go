// Package voucher renders the authorization documents ("laudos") handed to
// couriers: a fuel voucher, a parts voucher and a plain request report.
// Rendering is pure: the same input and clock produce the same bytes.
package voucher

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

var ErrInvalidInput = errors.New("invalid voucher input")

const (
	pageWidth   = 210.0
	pageCenter  = pageWidth / 2
	systemName  = "Sistema de Gestão de Motoboys"
	footerLine  = "Documento gerado automaticamente pelo Sistema de Gestão de Motoboys"
	dateLayout  = "02/01/2006"
	stampLayout = "02/01/2006 15:04:05"
)

type rgb struct{ r, g, b int }

var (
	fuelColor  = rgb{0, 123, 255}
	partsColor = rgb{255, 140, 0}
	darkColor  = rgb{51, 51, 51}
	lightGray  = rgb{240, 240, 240}
	grayText   = rgb{128, 128, 128}
)

// SupervisorRef identifies the approving supervisor on a fuel voucher.
type SupervisorRef struct {
	Codigo string
	Nome   string
}

// FuelVoucher is the input for a fuel (or generic) authorization.
type FuelVoucher struct {
	Nome        string
	Telefone    string
	Placa       string
	Solicitacao string
	// ValorCombustivel is omitted from the document when not valid.
	ValorCombustivel decimal.NullDecimal
	DataCriacao      time.Time
	Supervisor       *SupervisorRef
}

// PartsVoucher is the input for a parts authorization.
type PartsVoucher struct {
	Nome           string
	Telefone       string
	Placa          string
	Matricula      string
	DescricaoPecas string
	ValorPeca      decimal.Decimal
	Loja           string
	DataCriacao    time.Time
	Supervisor     *SupervisorRef
}

// Generator renders vouchers. Now stamps the authorization date and footer;
// Location controls how dates are printed.
type Generator struct {
	Now      func() time.Time
	Location *time.Location
}

// NewGenerator returns a Generator on the wall clock in local time.
func NewGenerator() *Generator {
	return &Generator{Now: time.Now, Location: time.Local}
}

func (g *Generator) now() time.Time {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	loc := g.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

func (g *Generator) localDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	loc := g.Location
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dateLayout)
}

// Fuel renders the fuel authorization.
func (g *Generator) Fuel(v FuelVoucher) ([]byte, error) {
	if strings.TrimSpace(v.Nome) == "" {
		return nil, fmt.Errorf("%w: nome is required", ErrInvalidInput)
	}
	now := g.now()
	d := newDocument(now, "Autorização de combustível - "+v.Nome)

	d.header(fuelColor, "AUTORIZAÇÃO DE COMBUSTÍVEL")
	d.title("LAUDO DE AUTORIZAÇÃO PARA RETIRADA DE COMBUSTÍVEL", fuelColor)

	d.section("DADOS DO MOTOBOY:")
	d.lines(7,
		"Nome: "+v.Nome,
		"Telefone: "+v.Telefone,
		"Placa da Moto: "+v.Placa,
		"Data da Solicitação: "+g.localDate(v.DataCriacao),
	)
	d.y += 10

	if v.Supervisor != nil {
		d.section("SUPERVISOR RESPONSÁVEL:")
		d.lines(7, "Nome: "+v.Supervisor.Nome, "Código: "+v.Supervisor.Codigo)
		d.y += 3
	}

	d.section("INFORMAÇÕES DO COMBUSTÍVEL:")
	if v.ValorCombustivel.Valid {
		d.lines(7, "Valor Solicitado: "+Money(v.ValorCombustivel.Decimal))
	}
	d.lines(7, "Tipo de Solicitação: "+v.Solicitacao)
	d.y += 15

	auth := make([]string, 0, 3)
	if v.ValorCombustivel.Valid {
		auth = append(auth, "Valor Autorizado: "+Money(v.ValorCombustivel.Decimal))
	}
	auth = append(auth, "Data de Autorização: "+now.Format(dateLayout), "Status: APROVADO")
	d.authorization(auth)

	d.section("INSTRUÇÕES:")
	d.lines(6,
		"1. Este documento autoriza a retirada do combustível solicitado.",
		"2. O valor máximo autorizado é o especificado neste laudo.",
		"3. A retirada deve ser feita em postos credenciados.",
		"4. Apresente este documento no posto para retirada.",
		"5. Guarde o comprovante de abastecimento para controle.",
	)
	d.y += 15

	signer := "Supervisor"
	if v.Supervisor != nil && v.Supervisor.Nome != "" {
		signer = v.Supervisor.Nome
	}
	d.signatures(fuelColor, signer)
	d.footer(now)

	return d.bytes()
}

// Parts renders the parts authorization.
func (g *Generator) Parts(v PartsVoucher) ([]byte, error) {
	switch {
	case strings.TrimSpace(v.Nome) == "":
		return nil, fmt.Errorf("%w: nome is required", ErrInvalidInput)
	case strings.TrimSpace(v.DescricaoPecas) == "":
		return nil, fmt.Errorf("%w: parts description is required", ErrInvalidInput)
	case !v.ValorPeca.IsPositive():
		return nil, fmt.Errorf("%w: authorized value must be greater than zero", ErrInvalidInput)
	}
	now := g.now()
	d := newDocument(now, "Autorização de peças - "+v.Nome)

	d.header(partsColor, "AUTORIZAÇÃO DE PEÇAS")
	d.title("LAUDO DE AUTORIZAÇÃO PARA RETIRADA DE PEÇAS", partsColor)

	d.section("DADOS DO MOTOBOY:")
	d.lines(7,
		"Nome: "+v.Nome,
		"Telefone: "+v.Telefone,
		"Matrícula: "+v.Matricula,
		"Placa da Moto: "+v.Placa,
		"Data da Solicitação: "+g.localDate(v.DataCriacao),
	)
	d.y += 10

	d.section("DESCRIÇÃO DA PEÇA:")
	d.wrapped(v.DescricaoPecas, 160, 6)
	d.y += 15

	loja := v.Loja
	if strings.TrimSpace(loja) == "" {
		loja = "autorizada"
	}
	d.authorization([]string{
		"Valor Autorizado: " + Money(v.ValorPeca),
		"Loja Autorizada: " + loja,
		"Data de Autorização: " + now.Format(dateLayout),
	})

	d.section("INSTRUÇÕES:")
	d.lines(6,
		"1. Este documento autoriza a retirada da peça descrita acima.",
		"2. O valor máximo autorizado é o especificado neste laudo.",
		"3. A retirada deve ser feita na loja indicada.",
		"4. Apresente este documento na loja para retirada.",
		"5. Guarde o comprovante de retirada para controle.",
	)
	d.y += 15

	signer := "Supervisor"
	if v.Supervisor != nil && v.Supervisor.Nome != "" {
		signer = v.Supervisor.Nome
	}
	d.signatures(partsColor, signer)
	d.footer(now)

	return d.bytes()
}

// Money formats an amount the way vouchers and chat messages print it.
func Money(v decimal.Decimal) string {
	return "R$ " + v.StringFixed(2)
}

// document wraps an fpdf page with a running vertical cursor.
type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	y   float64
}

func newDocument(now time.Time, subject string) *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator(systemName, true)
	pdf.SetTitle(subject, true)
	pdf.AddPage()

	return &document{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
		y:   20,
	}
}

func (d *document) header(c rgb, heading string) {
	d.pdf.SetFillColor(c.r, c.g, c.b)
	d.pdf.Rect(0, 0, pageWidth, 30, "F")

	d.pdf.SetTextColor(255, 255, 255)
	d.pdf.SetFont("Helvetica", "B", 18)
	d.centered(heading, 15)
	d.pdf.SetFont("Helvetica", "", 10)
	d.centered(systemName, 22)
	d.y = 45
}

func (d *document) title(text string, line rgb) {
	d.pdf.SetTextColor(darkColor.r, darkColor.g, darkColor.b)
	d.pdf.SetFont("Helvetica", "B", 14)
	d.centered(text, d.y)
	d.y += 20

	d.pdf.SetDrawColor(line.r, line.g, line.b)
	d.pdf.SetLineWidth(0.5)
	d.pdf.Line(20, d.y, 190, d.y)
	d.y += 15
	d.pdf.SetFont("Helvetica", "", 12)
}

func (d *document) section(label string) {
	d.pdf.SetFont("Helvetica", "B", 12)
	d.pdf.Text(20, d.y, d.tr(label))
	d.y += 10
	d.pdf.SetFont("Helvetica", "", 12)
}

func (d *document) lines(step float64, text ...string) {
	for _, t := range text {
		d.pdf.Text(25, d.y, d.tr(t))
		d.y += step
	}
}

func (d *document) wrapped(text string, width, step float64) {
	for _, line := range d.pdf.SplitText(d.tr(text), width) {
		d.pdf.Text(25, d.y, line)
		d.y += step
	}
}

// authorization draws the grey box with the authorized terms.
func (d *document) authorization(rows []string) {
	d.pdf.SetFillColor(lightGray.r, lightGray.g, lightGray.b)
	d.pdf.Rect(20, d.y-5, 170, 40, "F")

	d.pdf.SetFont("Helvetica", "B", 12)
	d.pdf.Text(25, d.y, d.tr("AUTORIZAÇÃO:"))
	d.y += 10
	d.pdf.SetFont("Helvetica", "", 12)
	for _, r := range rows {
		d.pdf.Text(25, d.y, d.tr(r))
		d.y += 7
	}
	d.y += 13
}

func (d *document) signatures(c rgb, supervisor string) {
	d.pdf.SetDrawColor(c.r, c.g, c.b)
	d.pdf.Line(20, d.y, 90, d.y)
	d.pdf.Line(120, d.y, 190, d.y)
	d.y += 5

	d.pdf.SetFont("Helvetica", "", 10)
	d.centeredAt(supervisor, 55, d.y)
	d.centeredAt("Motoboy", 155, d.y)
}

func (d *document) footer(now time.Time) {
	_, pageHeight := d.pdf.GetPageSize()
	d.pdf.SetFont("Helvetica", "", 8)
	d.pdf.SetTextColor(grayText.r, grayText.g, grayText.b)
	d.centered(footerLine, pageHeight-10)
	d.centered("Gerado em: "+now.Format(stampLayout), pageHeight-5)
}

func (d *document) centered(text string, y float64) {
	d.centeredAt(text, pageCenter, y)
}

func (d *document) centeredAt(text string, x, y float64) {
	t := d.tr(text)
	d.pdf.Text(x-d.pdf.GetStringWidth(t)/2, y, t)
}

func (d *document) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
