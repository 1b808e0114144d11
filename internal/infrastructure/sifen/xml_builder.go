package sifen

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"

	domainsifen "github.com/jhoicas/sifen-api/internal/domain/sifen"
	"github.com/jhoicas/sifen-api/pkg/sifen"
)

// Formato de fecha-hora de emisión (dFeEmiDE), sin zona horaria.
const issueDateTimeLayout = "2006-01-02T15:04:05"

// XMLBuilderService construye el XML del rDE (sin firma).
type XMLBuilderService struct{}

// NewXMLBuilderService crea el servicio.
func NewXMLBuilderService() *XMLBuilderService {
	return &XMLBuilderService{}
}

// Build genera el []byte del rDE. El orden de los elementos es fijo y la salida es compacta
// (sin sangría): la firma se calcula sobre estos bytes, así que la misma entrada siempre
// produce exactamente el mismo XML.
//
//	rDE
//	├── dVerFor
//	└── DE @Id=CDC
//	    ├── dFeEmiDE
//	    ├── gEmis (dRucEm, dDVEmi, dNomEm, dDirEmi?)
//	    ├── gDatRec (dNomRec)
//	    ├── gDtipDE (gCamItem*)
//	    └── gTotRes (dTotOpe, gPaEmiIVA)
func (s *XMLBuilderService) Build(ctx *DocumentBuildContext) ([]byte, error) {
	if ctx == nil {
		return nil, fmt.Errorf("sifen: contexto de construcción nulo")
	}
	if !domainsifen.ValidCDC(ctx.CDC) {
		return nil, fmt.Errorf("sifen: CDC inválido %q", ctx.CDC)
	}
	if !ctx.Tax.Rate.Valid() {
		return nil, fmt.Errorf("sifen: desglose de IVA sin tasa válida (%d)", int(ctx.Tax.Rate))
	}
	ruc, err := sifen.ParseRUC(ctx.Transaction.IssuerRUC)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	rde := doc.CreateElement("rDE")
	rde.CreateAttr("xmlns", sifen.NamespaceDE)
	writeText(rde, "dVerFor", sifen.FormatVersion)

	de := rde.CreateElement("DE")
	de.CreateAttr("Id", ctx.CDC)
	writeText(de, "dFeEmiDE", ctx.IssuedAt.Format(issueDateTimeLayout))

	// ---- gEmis: emisor
	emis := de.CreateElement("gEmis")
	writeText(emis, "dRucEm", ruc.Number)
	writeText(emis, "dDVEmi", ruc.CheckDigit)
	writeText(emis, "dNomEm", ctx.Issuer.LegalName)
	if ctx.Issuer.Address != "" {
		writeText(emis, "dDirEmi", ctx.Issuer.Address)
	}

	// ---- gDatRec: receptor
	rec := de.CreateElement("gDatRec")
	writeText(rec, "dNomRec", ctx.Transaction.BuyerName)

	// ---- gDtipDE: ítems de la operación
	s.writeItems(de, ctx)

	// ---- gTotRes: totales e IVA
	s.writeTotals(de, ctx)

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("sifen: serializar rDE: %w", err)
	}
	return out, nil
}

func (s *XMLBuilderService) writeItems(de *etree.Element, ctx *DocumentBuildContext) {
	dtip := de.CreateElement("gDtipDE")
	for _, it := range ctx.Transaction.Items {
		item := dtip.CreateElement("gCamItem")
		if it.ProductCode != "" {
			writeText(item, "dCodInt", it.ProductCode)
		}
		writeText(item, "dDesProSer", it.Description)
		writeText(item, "dCantProSer", strconv.Itoa(it.Quantity))
		writeText(item, "dPUniProSer", sifen.FormatAmount(it.UnitPrice))
		writeText(item, "dTotBruOpeItem", sifen.FormatAmount(it.Subtotal()))
	}
}

// writeTotals escribe el total declarado y el desglose gPaEmiIVA (dBaseGra10/dIVA10 o dBaseGra5/dIVA5).
func (s *XMLBuilderService) writeTotals(de *etree.Element, ctx *DocumentBuildContext) {
	tot := de.CreateElement("gTotRes")
	writeText(tot, "dTotOpe", sifen.FormatAmount(ctx.Transaction.Total))

	suffix := strconv.Itoa(int(ctx.Tax.Rate))
	iva := tot.CreateElement("gPaEmiIVA")
	writeText(iva, "dBaseGra"+suffix, sifen.FormatAmount(ctx.Tax.Base))
	writeText(iva, "dIVA"+suffix, sifen.FormatAmount(ctx.Tax.Tax))
}

func writeText(parent *etree.Element, tag, value string) {
	parent.CreateElement(tag).SetText(value)
}
