package handler

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"regexp"
	"time"

	"motoboy/internal/voucher"
	"motoboy/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReportRenderer renders the standalone request report.
type ReportRenderer interface {
	Report(r voucher.ReportData) ([]byte, error)
}

// GeneratePDFRequest is the body accepted by the public report endpoint.
type GeneratePDFRequest struct {
	Nome            string           `json:"nome"`
	Telefone        string           `json:"telefone"`
	TipoSolicitacao string           `json:"tipoSolicitacao"`
	Valor           *decimal.Decimal `json:"valor"`
	Descricao       string           `json:"descricao"`
	Status          string           `json:"status"`
	AprovacaoSup    string           `json:"aprovacaoSup"`
	DataCriacao     string           `json:"dataCriacao"`
}

var whitespace = regexp.MustCompile(`\s+`)

type PDFHandler struct {
	renderer ReportRenderer
	limit    gin.HandlerFunc
	log      *zap.Logger
	now      func() time.Time
}

// NewPDFHandler wires the report endpoint. limit may be nil.
func NewPDFHandler(renderer ReportRenderer, limit gin.HandlerFunc, log *zap.Logger) *PDFHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PDFHandler{renderer: renderer, limit: limit, log: log, now: time.Now}
}

func (h *PDFHandler) RegisterRoutes(router *gin.RouterGroup) {
	handlers := []gin.HandlerFunc{h.onlyPost}
	if h.limit != nil {
		handlers = append(handlers, h.limit)
	}
	router.Any("/generate-pdf", append(handlers, h.Generate)...)
}

func (h *PDFHandler) onlyPost(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.Header("Allow", http.MethodPost)
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, response.Error(http.StatusMethodNotAllowed, "Method not allowed"))
		return
	}
	c.Next()
}

// Generate godoc
// @Summary      Render a request report
// @Description  Public and rate limited. Returns the PDF as an attachment.
// @Tags         pdf
// @Accept       json
// @Produce      application/pdf
// @Param        payload  body      GeneratePDFRequest  true  "Report data"
// @Success      200      {file}    binary
// @Failure      400      {object}  response.Response
// @Failure      405      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Router       /api/generate-pdf [post]
func (h *PDFHandler) Generate(c *gin.Context) {
	var req GeneratePDFRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	if req.Nome == "" || req.Telefone == "" || req.TipoSolicitacao == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "nome, telefone and tipoSolicitacao are required"))
		return
	}

	data := voucher.ReportData{
		Nome:            req.Nome,
		Telefone:        req.Telefone,
		TipoSolicitacao: req.TipoSolicitacao,
		Descricao:       req.Descricao,
		Status:          req.Status,
		AprovacaoSup:    req.AprovacaoSup,
		DataCriacao:     req.DataCriacao,
	}
	if req.Valor != nil {
		data.Valor = decimal.NewNullDecimal(*req.Valor)
	}

	pdf, err := h.renderer.Report(data)
	if err != nil {
		if errors.Is(err, voucher.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
			return
		}
		h.log.Error("report generation failed", zap.String("nome", req.Nome), zap.Error(err))
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "failed to generate PDF"))
		return
	}

	filename := fmt.Sprintf("solicitacao_%s_%d.pdf", whitespace.ReplaceAllString(req.Nome, "_"), h.now().UnixMilli())
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
