// Package fiscal arma el XML del documento equivalente POS y su huella de
// integridad. El documento no se firma ni se transmite a la DIAN: se emite un
// documento equivalente simplificado que lleva el CUDE ya calculado en la
// venta y un digest SHA-256 del XML canónico (C14N) que permite verificar que
// el archivo entregado al cliente no fue alterado.
package fiscal

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/ucarion/c14n"

	appsale "github.com/jhoicas/Pos-api/internal/application/sale"
	domfiscal "github.com/jhoicas/Pos-api/internal/domain/fiscal"
)

const documentNamespace = "urn:pos-api:documento-equivalente:1.0"

// DocumentBuilder implementa sale.FiscalBuilder.
type DocumentBuilder struct{}

// NewDocumentBuilder construye el generador de documentos equivalentes.
func NewDocumentBuilder() *DocumentBuilder { return &DocumentBuilder{} }

var _ appsale.FiscalBuilder = (*DocumentBuilder)(nil)

// BuildDocument arma el XML del documento equivalente y lo devuelve en forma
// compacta. El digest se calcula sobre la forma canónica del documento SIN el
// elemento DocumentDigest; para verificarlo se elimina ese elemento, se
// canonicaliza el resto y se compara el SHA-256 en base64.
func (b *DocumentBuilder) BuildDocument(_ context.Context, data *appsale.ReceiptData) ([]byte, error) {
	doc := buildSkeleton(data)

	raw, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("fiscal: serializar documento: %w", err)
	}
	digest, err := canonicalDigest(raw)
	if err != nil {
		return nil, fmt.Errorf("fiscal: digest canónico: %w", err)
	}

	dig := doc.Root().CreateElement("DocumentDigest")
	dig.CreateAttr("algorithm", "SHA-256")
	dig.SetText(digest)

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("fiscal: serializar documento: %w", err)
	}
	return out, nil
}

func buildSkeleton(data *appsale.ReceiptData) *etree.Document {
	s := data.Sale

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("PosEquivalentDocument")
	root.CreateAttr("xmlns", documentNamespace)

	addText(root, "ID", s.ReceiptNumber)
	cude := root.CreateElement("UUID")
	cude.CreateAttr("schemeName", "CUDE-SHA384")
	cude.SetText(s.CUDE)
	addText(root, "IssueDate", s.CreatedAt.Format("2006-01-02"))
	addText(root, "IssueTime", s.CreatedAt.Format("15:04:05-07:00"))
	addText(root, "DocumentCurrencyCode", "COP")
	env := data.Business.Environment
	if env == "" {
		env = "1"
	}
	addText(root, "ProfileExecutionID", env)
	addText(root, "LineCountNumeric", strconv.Itoa(len(s.Items)))

	supplier := root.CreateElement("SupplierParty")
	addText(supplier, "Name", data.Business.Name)
	addText(supplier, "NIT", data.Business.NIT)
	outlet := supplier.CreateElement("Outlet")
	addText(outlet, "Name", data.Outlet.Name)
	if data.Outlet.Address != "" {
		addText(outlet, "Address", data.Outlet.Address)
	}

	// Sin cliente identificado el adquiriente es el consumidor final con el
	// documento genérico que define la DIAN.
	customer := root.CreateElement("CustomerParty")
	if data.Customer != nil {
		addText(customer, "Name", data.Customer.Name)
		docID := data.Customer.DocumentID
		if docID == "" {
			docID = domfiscal.DocAdqConsumidorFinal
		}
		addText(customer, "DocumentID", docID)
	} else {
		addText(customer, "Name", "Consumidor final")
		addText(customer, "DocumentID", domfiscal.DocAdqConsumidorFinal)
	}

	lines := root.CreateElement("Lines")
	for i, it := range s.Items {
		line := lines.CreateElement("Line")
		line.CreateAttr("number", strconv.Itoa(i+1))
		desc := it.ProductName
		if it.VariantName != "" {
			desc += " (" + it.VariantName + ")"
		}
		addText(line, "Description", desc)
		addText(line, "Quantity", it.Quantity.String())
		addAmount(line, "UnitPrice", it.UnitPrice)
		if it.ItemDiscount.IsPositive() {
			addAmount(line, "Discount", it.ItemDiscount)
		}
		addAmount(line, "LineTotal", it.LineTotal)
	}

	tax := root.CreateElement("TaxTotal")
	addAmount(tax, "TaxAmount", s.TaxAmount)
	scheme := tax.CreateElement("TaxScheme")
	scheme.CreateAttr("id", domfiscal.CodImpIVA)
	scheme.SetText("IVA")

	totals := root.CreateElement("MonetaryTotal")
	addAmount(totals, "LineExtensionAmount", s.Subtotal)
	addAmount(totals, "AllowanceTotalAmount", s.DiscountAmount)
	addAmount(totals, "ChargeTotalAmount", s.ServiceCharge)
	addAmount(totals, "PayableAmount", s.GrandTotal)

	means := root.CreateElement("PaymentMeans")
	for _, p := range s.Payments {
		pay := means.CreateElement("Payment")
		pay.CreateAttr("method", p.Method)
		if p.Reference != "" {
			pay.CreateAttr("reference", p.Reference)
		}
		pay.SetText(amount(p.Amount))
	}

	return doc
}

// canonicalDigest canonicaliza el XML (C14N) y devuelve su SHA-256 en base64.
func canonicalDigest(raw []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Entity = map[string]string{}
	canon, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canon)
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

func addText(parent *etree.Element, name, value string) *etree.Element {
	el := parent.CreateElement(name)
	el.SetText(value)
	return el
}

// addAmount agrega un monto con currencyID, formateado igual que en la cadena
// CUDE: punto decimal y dos decimales.
func addAmount(parent *etree.Element, name string, d decimal.Decimal) *etree.Element {
	el := addText(parent, name, amount(d))
	el.CreateAttr("currencyID", "COP")
	return el
}

func amount(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}
