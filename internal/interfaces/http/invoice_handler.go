package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/faturas-analytics/internal/application/analytics"
	"github.com/jhoicas/faturas-analytics/internal/application/dto"
	"github.com/jhoicas/faturas-analytics/internal/application/invoices"
)

// InvoiceLister consultas del ledger (implementado por *invoices.ListUseCase).
type InvoiceLister interface {
	ListByPeriod(ctx context.Context, q analytics.Query) (*dto.InvoiceListDTO, error)
	ListAll(ctx context.Context, nif string, limit int) (*dto.InvoiceListDTO, error)
}

// InvoicePDFDownloader (implementado por *invoices.PDFUseCase).
type InvoicePDFDownloader interface {
	DownloadPDF(ctx context.Context, nif, number string) ([]byte, string, error)
}

// InvoiceIngester (implementado por *invoices.IngestUseCase).
type InvoiceIngester interface {
	Ingest(ctx context.Context, reqs []dto.IngestInvoiceRequest) (*dto.IngestResultDTO, error)
}

// InvoiceHandler maneja listado, descarga de PDF e ingesta de facturas.
type InvoiceHandler struct {
	lister   InvoiceLister
	pdf      InvoicePDFDownloader
	ingester InvoiceIngester
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(lister InvoiceLister, pdf InvoicePDFDownloader, ingester InvoiceIngester) *InvoiceHandler {
	return &InvoiceHandler{lister: lister, pdf: pdf, ingester: ingester}
}

// List godoc
// @Summary      Facturas del período actual
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        nif      query  string  true   "NIF del negocio"
// @Param        filial   query  string  false  "Filial"
// @Param        periodo  query  int     false  "Código de período"
// @Success      200  {object}  dto.InvoiceListDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/faturas [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	q, err := queryFrom(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.lister.ListByPeriod(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListAll godoc
// @Summary      Últimas facturas del negocio
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        nif    query  string  true   "NIF del negocio"
// @Param        limit  query  int     false  "Máx. facturas (default 100, máx 1000)"
// @Success      200  {object}  dto.InvoiceListDTO
// @Router       /api/faturas/todas [get]
func (h *InvoiceHandler) ListAll(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return validationError(c, "limit debe ser un entero")
	}
	page.DefaultPage()
	out, err := h.lister.ListAll(c.UserContext(), c.Query("nif"), page.Limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PDF godoc
// @Summary      Descarga el PDF de una factura
// @Tags         invoices
// @Security     Bearer
// @Produce      application/pdf
// @Param        nif            query  string  true  "NIF del negocio"
// @Param        numero_fatura  query  string  true  "Número de factura"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/faturas/pdf [get]
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	body, filename, err := h.pdf.DownloadPDF(c.UserContext(), c.Query("nif"), c.Query("numero_fatura"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(body)
}

// Ingest godoc
// @Summary      Registra facturas estructuradas
// @Description  Cada factura se guarda en su propia transacción. Los duplicados y las inválidas se informan sin abortar el lote.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IngestRequest  true  "Facturas"
// @Success      201  {object}  dto.IngestResultDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/faturas [post]
func (h *InvoiceHandler) Ingest(c *fiber.Ctx) error {
	var req dto.IngestRequest
	if err := c.BodyParser(&req); err != nil {
		return validationError(c, "cuerpo JSON inválido")
	}
	if len(req.Invoices) > invoices.MaxIngestBatch {
		return validationError(c, fmt.Sprintf("máximo %d facturas por petición", invoices.MaxIngestBatch))
	}
	res, err := h.ingester.Ingest(c.UserContext(), req.Invoices)
	if err != nil {
		if res != nil {
			// Fallo de base de datos a mitad de lote: se informa lo ya persistido.
			return c.Status(fiber.StatusBadGateway).JSON(res)
		}
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}
