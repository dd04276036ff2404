// Orquestador del ciclo de facturación electrónica SRI (Ecuador):
//
//	Clave de acceso → XML factura → Firma XAdES → Recepción SOAP → Autorización → Update DB
//
// Cada transición de estado se persiste antes de avanzar, de modo que un
// proceso interrumpido deja la factura en el último estado alcanzado y se
// puede diagnosticar con los artefactos en disco.

package billing

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jhoicas/courier-pro/internal/domain/entity"
	"github.com/jhoicas/courier-pro/internal/domain/repository"
	infrasri "github.com/jhoicas/courier-pro/internal/infrastructure/sri"
	"github.com/jhoicas/courier-pro/pkg/logger"
)

// SRIOrchestrator secuencia ensamblado, firma y autorización de una factura.
type SRIOrchestrator struct {
	invoiceRepo    repository.InvoiceRepository
	enterpriseRepo repository.EnterpriseRepository
	clientRepo     repository.ClientRepository
	assembler      *infrasri.AssemblerService
	signingGateway *SigningGateway
	authClient     *AuthorizationClient
	environment    string // ambiente global; el del tenant tiene prioridad
	emissionType   string
	log            *logger.Logger
}

// NewSRIOrchestrator construye el orquestador con todas sus dependencias.
func NewSRIOrchestrator(
	invoiceRepo repository.InvoiceRepository,
	enterpriseRepo repository.EnterpriseRepository,
	clientRepo repository.ClientRepository,
	assembler *infrasri.AssemblerService,
	signingGateway *SigningGateway,
	authClient *AuthorizationClient,
	environment, emissionType string,
	log *logger.Logger,
) *SRIOrchestrator {
	return &SRIOrchestrator{
		invoiceRepo:    invoiceRepo,
		enterpriseRepo: enterpriseRepo,
		clientRepo:     clientRepo,
		assembler:      assembler,
		signingGateway: signingGateway,
		authClient:     authClient,
		environment:    environment,
		emissionType:   emissionType,
		log:            log.Component("sri-orchestrator"),
	}
}

// Process ejecuta el ciclo completo para una factura ya persistida. Es
// síncrono: el llamador decide si lo corre en goroutine. Todo fallo se
// persiste en la factura y se propaga, nunca se silencia.
func (o *SRIOrchestrator) Process(ctx context.Context, invoiceID string) error {
	// ═══════════════════════════════════════════════════════════════════════
	// 0. Cargar datos frescos de la factura y sus agregados
	// ═══════════════════════════════════════════════════════════════════════
	inv, err := o.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return err
	}

	enterprise, err := o.enterpriseRepo.GetByID(ctx, inv.EnterpriseID)
	if err != nil {
		return o.markError(ctx, inv, "fetch-enterprise", err)
	}
	client, err := o.clientRepo.GetByID(ctx, inv.ClientID)
	if err != nil {
		return o.markError(ctx, inv, "fetch-client", err)
	}
	details, err := o.invoiceRepo.GetDetailsByInvoiceID(ctx, invoiceID)
	if err != nil {
		return o.markError(ctx, inv, "fetch-details", err)
	}

	ambiente := enterprise.Ambiente
	if ambiente == "" {
		ambiente = o.environment
	}

	lines := make([]infrasri.InvoiceLineXML, len(details))
	for i, d := range details {
		codigo := d.PackageID
		if codigo == "" {
			codigo = "SRV-" + strconv.Itoa(i+1)
		}
		lines[i] = infrasri.InvoiceLineXML{
			Detail:          d,
			CodigoPrincipal: codigo,
			Descripcion:     d.Description,
			Cantidad:        d.Quantity,
			PrecioUnitario:  d.UnitPrice,
			Descuento:       d.Discount,
			Subtotal:        d.Subtotal,
		}
	}

	buildCtx := &infrasri.FacturaBuildContext{
		Invoice:     inv,
		Enterprise:  enterprise,
		Client:      client,
		Details:     lines,
		Ambiente:    ambiente,
		TipoEmision: o.emissionType,
	}

	// ═══════════════════════════════════════════════════════════════════════
	// 1. Clave de acceso + XML generado
	// ═══════════════════════════════════════════════════════════════════════
	if _, err := o.assembler.Assemble(buildCtx); err != nil {
		return o.markError(ctx, inv, "assemble", err)
	}
	inv.SRIStatus = entity.SRIStatusGenerated
	inv.UpdatedAt = time.Now()
	if err := o.invoiceRepo.Update(ctx, inv); err != nil {
		return err
	}
	o.log.Info().
		Str("invoice_id", invoiceID).
		Str("clave_acceso", inv.AccessKey).
		Msg("XML generado")

	// ═══════════════════════════════════════════════════════════════════════
	// 2. Firma digital
	// ═══════════════════════════════════════════════════════════════════════
	signedPath, err := o.signingGateway.Sign(ctx, enterprise, inv.XMLPath)
	if err != nil {
		return o.markError(ctx, inv, "sign", err)
	}
	inv.SignedXMLPath = signedPath
	inv.SRIStatus = entity.SRIStatusSigned
	inv.UpdatedAt = time.Now()
	if err := o.invoiceRepo.Update(ctx, inv); err != nil {
		return err
	}

	// ═══════════════════════════════════════════════════════════════════════
	// 3. Recepción + autorización
	// ═══════════════════════════════════════════════════════════════════════
	outcome, err := o.authClient.Authorize(ctx, signedPath, inv.AccessKey)
	if err != nil {
		return o.finishFailure(ctx, inv, err)
	}

	inv.SRIStatus = entity.SRIStatusAuthorized
	inv.AuthNumber = outcome.Record.NumeroAutorizacion
	inv.AuthDate = parseAuthDate(outcome.Record.FechaAutorizacion)
	inv.SRIErrors = ""
	inv.UpdatedAt = time.Now()
	if err := o.invoiceRepo.Update(ctx, inv); err != nil {
		return err
	}
	o.log.Info().
		Str("invoice_id", invoiceID).
		Str("clave_acceso", inv.AccessKey).
		Str("numero_autorizacion", inv.AuthNumber).
		Msg("factura autorizada")
	return nil
}

// finishFailure traduce el error de autorización al estado terminal de la
// factura, lo persiste y lo propaga.
func (o *SRIOrchestrator) finishFailure(ctx context.Context, inv *entity.Invoice, cause error) error {
	var rejected *AuthorizationRejectedError
	var undetermined *UndeterminedAuthorizationError
	var reception *ReceptionError

	switch {
	case errors.As(cause, &rejected):
		inv.SRIStatus = entity.SRIStatusRejected
		inv.SRIErrors = FormatMensajes(rejected.Mensajes)
	case errors.As(cause, &undetermined):
		inv.SRIStatus = entity.SRIStatusUndetermined
		inv.SRIErrors = cause.Error()
	case errors.As(cause, &reception):
		inv.SRIStatus = entity.SRIStatusError
		inv.SRIErrors = FormatMensajes(reception.Mensajes)
	default:
		inv.SRIStatus = entity.SRIStatusError
		inv.SRIErrors = cause.Error()
	}
	inv.UpdatedAt = time.Now()
	if err := o.invoiceRepo.Update(ctx, inv); err != nil {
		o.log.Error().Err(err).
			Str("invoice_id", inv.ID).
			Str("estado", inv.SRIStatus).
			Msg("no se pudo persistir el estado terminal")
	}
	o.log.Warn().
		Str("invoice_id", inv.ID).
		Str("clave_acceso", inv.AccessKey).
		Str("estado", inv.SRIStatus).
		Msg("factura no autorizada")
	return cause
}

// markError persiste el estado ERROR con el paso que falló y propaga el error.
func (o *SRIOrchestrator) markError(ctx context.Context, inv *entity.Invoice, step string, cause error) error {
	inv.SRIStatus = entity.SRIStatusError
	inv.SRIErrors = step + ": " + cause.Error()
	inv.UpdatedAt = time.Now()
	if err := o.invoiceRepo.Update(ctx, inv); err != nil {
		o.log.Error().Err(err).
			Str("invoice_id", inv.ID).
			Msg("no se pudo persistir el estado ERROR")
	}
	o.log.Error().Err(cause).
		Str("invoice_id", inv.ID).
		Str("paso", step).
		Msg("fallo en el ciclo SRI")
	return cause
}

// parseAuthDate intenta interpretar la fecha de autorización del SRI. El WS
// la devuelve en formato ISO con zona horaria; si no parsea se deja nula.
func parseAuthDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05.000-07:00",
		"02/01/2006 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
