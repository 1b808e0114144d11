package billing

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/sifen-api/internal/domain/entity"
	domainsifen "github.com/jhoicas/sifen-api/internal/domain/sifen"
	infrasifen "github.com/jhoicas/sifen-api/internal/infrastructure/sifen"
	pkgsifen "github.com/jhoicas/sifen-api/pkg/sifen"
)

// IssuancePipeline arma y firma el documento electrónico:
//
//	validar → IVA → número de documento → CDC → XML rDE → firma → SignedDocument
//
// No persiste nada: el llamador guarda el resultado y genera el PDF.
// Es seguro para llamadas concurrentes; cada emisión tiene su propio documento, CDC y certificado.
type IssuancePipeline struct {
	profile  atomic.Pointer[entity.IssuerProfile]
	cdc      *domainsifen.CDCGenerator
	builder  *infrasifen.XMLBuilderService
	sequence SequenceSource
	signer   atomic.Pointer[signerRef]
	now      func() time.Time
	log      zerolog.Logger
}

type signerRef struct{ s pkgsifen.Signer }

// NewIssuancePipeline construye el pipeline.
func NewIssuancePipeline(
	profile entity.IssuerProfile,
	cdc *domainsifen.CDCGenerator,
	builder *infrasifen.XMLBuilderService,
	signer pkgsifen.Signer,
	sequence SequenceSource,
	log zerolog.Logger,
) *IssuancePipeline {
	p := &IssuancePipeline{
		cdc:      cdc,
		builder:  builder,
		sequence: sequence,
		now:      time.Now,
		log:      log,
	}
	p.SetProfile(profile)
	p.signer.Store(&signerRef{s: signer})
	return p
}

// WithClock reemplaza el reloj (dFeEmiDE y fecha del CDC).
func (p *IssuancePipeline) WithClock(now func() time.Time) *IssuancePipeline {
	p.now = now
	return p
}

// SetSigner cambia el firmador para las emisiones siguientes (por ejemplo al subir un certificado).
// Las emisiones en curso terminan con el firmador que tomaron.
func (p *IssuancePipeline) SetSigner(s pkgsifen.Signer) {
	p.signer.Store(&signerRef{s: s})
}

// SignatureMode modo del firmador actual.
func (p *IssuancePipeline) SignatureMode() pkgsifen.SignatureMode {
	return p.signer.Load().s.Mode()
}

// SetProfile cambia los datos del emisor para las emisiones siguientes.
func (p *IssuancePipeline) SetProfile(profile entity.IssuerProfile) {
	profile = profile.WithDefaults()
	p.profile.Store(&profile)
}

// Profile datos del emisor que usa el pipeline.
func (p *IssuancePipeline) Profile() entity.IssuerProfile {
	return *p.profile.Load()
}

// Issue emite un documento con la numeración propia del pipeline. Errores de validación devuelven
// domain.ErrMalformedTransaction, tasa no soportada domain.ErrUnsupportedTaxRate; los errores del
// firmador se propagan sin cambios.
func (p *IssuancePipeline) Issue(ctx context.Context, tx entity.Transaction) (*domainsifen.SignedDocument, error) {
	return p.IssueWithSequence(ctx, tx, p.sequence)
}

// IssueWithSequence igual que Issue pero toma el número de seq, normalmente atada a la transacción
// que guarda la factura: si la firma falla el número no se consume.
func (p *IssuancePipeline) IssueWithSequence(ctx context.Context, tx entity.Transaction, seq SequenceSource) (*domainsifen.SignedDocument, error) {
	profile := p.Profile()
	tx.Items = slices.Clone(tx.Items)
	if tx.IssuerRUC == "" {
		tx.IssuerRUC = profile.RUC
	}

	// 1) Validación y tasa
	if err := domainsifen.ValidateTransaction(tx); err != nil {
		return nil, err
	}
	rate, err := domainsifen.ParseTaxRate(tx.TaxRate)
	if err != nil {
		return nil, err
	}
	tax, err := domainsifen.CalculateIVA(tx.Total, rate)
	if err != nil {
		return nil, err
	}

	ruc, err := pkgsifen.ParseRUC(tx.IssuerRUC)
	if err != nil {
		return nil, err
	}
	log := p.log.With().Str("ruc", ruc.String()).Logger()
	if ruc.HasCheckDigit {
		if err := pkgsifen.ValidateRUCCheckDigit(tx.IssuerRUC); err != nil {
			log.Warn().Err(err).Msg("dígito verificador del RUC no coincide con el módulo 11")
		}
	}
	// El total declarado manda; la diferencia con los ítems solo se registra.
	if itemsTotal := tx.ItemsTotal(); !itemsTotal.Equal(tx.Total) {
		log.Debug().
			Str("total", pkgsifen.FormatAmount(tx.Total)).
			Str("items_total", pkgsifen.FormatAmount(itemsTotal)).
			Msg("el total declarado difiere de la suma de los ítems")
	}

	// 2) Número de documento y CDC
	number, err := seq.Next(ctx, ruc.Number)
	if err != nil {
		return nil, fmt.Errorf("obtener número de documento: %w", err)
	}
	issuedAt := p.now()
	cdc, err := p.cdc.Generate(domainsifen.CDCParams{
		IssuerRUC:       tx.IssuerRUC,
		DocumentType:    profile.DocumentType,
		Establishment:   profile.Establishment,
		ExpeditionPoint: profile.ExpeditionPoint,
		Sequence:        number,
		IssueDate:       issuedAt,
		EmissionType:    profile.EmissionType,
	})
	if err != nil {
		return nil, err
	}

	// 3) XML rDE sin firma
	unsigned, err := p.builder.Build(&infrasifen.DocumentBuildContext{
		Transaction: tx,
		CDC:         cdc,
		Tax:         tax,
		Issuer:      profile,
		IssuedAt:    issuedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("construir rDE: %w", err)
	}

	// 4) Firma
	signed, err := p.signer.Load().s.Sign(ctx, unsigned)
	if err != nil {
		log.Error().Err(err).Str("cdc", cdc).Msg("firma del documento fallida")
		return nil, err
	}

	event := log.Info()
	if signed.Mode != pkgsifen.SignatureModeReal {
		event = log.Warn()
	}
	event.Str("cdc", cdc).Str("mode", string(signed.Mode)).Int64("sequence", number).Msg("documento electrónico emitido")

	return &domainsifen.SignedDocument{
		CDC:            cdc,
		UnsignedXML:    unsigned,
		SignatureBlock: signed.SignatureBlock,
		SignedXML:      signed.Signed,
		Mode:           signed.Mode,
		Tax:            tax,
		Transaction:    tx,
		Issuer:         profile,
		IssuedAt:       issuedAt,
	}, nil
}
