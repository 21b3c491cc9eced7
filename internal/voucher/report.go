package voucher

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ReportData feeds the standalone single-page request report.
type ReportData struct {
	Nome            string
	Telefone        string
	TipoSolicitacao string
	Valor           decimal.NullDecimal
	Descricao       string
	Status          string
	AprovacaoSup    string
	DataCriacao     string // printed as given
}

var approvalBadge = map[string]rgb{
	"pendente":  {243, 156, 18},
	"aprovado":  {39, 174, 96},
	"rejeitado": {231, 76, 60},
}

// Report renders the request report used by the public PDF endpoint.
func (g *Generator) Report(r ReportData) ([]byte, error) {
	if strings.TrimSpace(r.Nome) == "" || strings.TrimSpace(r.Telefone) == "" || strings.TrimSpace(r.TipoSolicitacao) == "" {
		return nil, fmt.Errorf("%w: nome, telefone and tipoSolicitacao are required", ErrInvalidInput)
	}
	now := g.now()
	d := newDocument(now, "Relatório de Solicitação - "+r.Nome)

	d.pdf.SetTextColor(darkColor.r, darkColor.g, darkColor.b)
	d.pdf.SetFont("Helvetica", "B", 20)
	d.centered("Relatório de Solicitação", 25)
	d.pdf.SetFont("Helvetica", "", 13)
	d.centered(systemName, 33)
	d.pdf.SetDrawColor(darkColor.r, darkColor.g, darkColor.b)
	d.pdf.SetLineWidth(0.6)
	d.pdf.Line(20, 40, 190, 40)
	d.y = 55

	field := func(label, value string) {
		d.pdf.SetFont("Helvetica", "B", 12)
		d.pdf.Text(20, d.y, d.tr(label))
		d.pdf.SetFont("Helvetica", "", 12)
		d.pdf.Text(70, d.y, d.tr(value))
		d.y += 9
	}

	field("Nome:", r.Nome)
	field("Telefone:", r.Telefone)
	field("Tipo de Solicitação:", r.TipoSolicitacao)
	if r.Valor.Valid && !r.Valor.Decimal.IsZero() {
		field("Valor:", Money(r.Valor.Decimal))
	}
	if strings.TrimSpace(r.Descricao) != "" {
		d.pdf.SetFont("Helvetica", "B", 12)
		d.pdf.Text(20, d.y, d.tr("Descrição:"))
		d.pdf.SetFont("Helvetica", "", 12)
		for _, line := range d.pdf.SplitText(d.tr(r.Descricao), 120) {
			d.pdf.Text(70, d.y, line)
			d.y += 6
		}
		d.y += 3
	}
	field("Status:", r.Status)

	d.pdf.SetFont("Helvetica", "B", 12)
	d.pdf.Text(20, d.y, d.tr("Aprovação Supervisor:"))
	badge := strings.ToUpper(r.AprovacaoSup)
	if c, ok := approvalBadge[strings.ToLower(r.AprovacaoSup)]; ok {
		d.pdf.SetFillColor(c.r, c.g, c.b)
		d.pdf.Rect(69, d.y-5, d.pdf.GetStringWidth(d.tr(badge))+4, 7, "F")
		d.pdf.SetTextColor(255, 255, 255)
	}
	d.pdf.Text(71, d.y, d.tr(badge))
	d.pdf.SetTextColor(darkColor.r, darkColor.g, darkColor.b)
	d.y += 9

	field("Data de Criação:", r.DataCriacao)

	d.pdf.SetFont("Helvetica", "", 9)
	d.pdf.SetTextColor(119, 119, 119)
	d.centered("Documento gerado automaticamente pelo sistema", d.y+30)
	d.centered("Data: "+now.Format(dateLayout)+" - Hora: "+now.Format("15:04:05"), d.y+36)

	return d.bytes()
}
