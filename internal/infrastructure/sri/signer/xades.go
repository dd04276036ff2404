// Firma digital XAdES-BES en proceso para comprobantes SRI.
// Inyecta <ds:Signature> como último hijo del elemento <factura>.

package signer

import (
	"bytes"
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/courier-pro/internal/application/billing"
)

// XadesSigner firma en proceso con la llave del .p12 del emisor. No depende
// de binarios externos, lo que simplifica despliegues en contenedor.
type XadesSigner struct{}

// NewXadesSigner crea el firmador.
func NewXadesSigner() *XadesSigner {
	return &XadesSigner{}
}

// Sign implementa billing.Signer: firma el XML y escribe el resultado en
// <signedDir>/<basename del XML sin firmar>.
func (s *XadesSigner) Sign(_ context.Context, unsignedPath, signedDir string, cred *billing.SigningCredential) (string, error) {
	xmlBytes, err := os.ReadFile(unsignedPath)
	if err != nil {
		return "", &billing.SigningError{Path: unsignedPath, Err: err}
	}

	cert, err := LoadFromP12(cred.CertPath, cred.Password)
	if err != nil {
		return "", &billing.SigningError{Path: unsignedPath, Err: err}
	}
	signedBytes, err := s.signBytes(xmlBytes, cert.PrivateKey, cert.Leaf)
	if err != nil {
		return "", &billing.SigningError{Path: unsignedPath, Err: err}
	}

	signedPath := filepath.Join(signedDir, filepath.Base(unsignedPath))
	if err := os.WriteFile(signedPath, signedBytes, 0o644); err != nil {
		return "", &billing.SigningError{Path: unsignedPath, Err: err}
	}
	return signedPath, nil
}

// signBytes construye el nodo ds:Signature y lo inyecta en el documento.
func (s *XadesSigner) signBytes(xmlBytes []byte, privateKey any, leaf *x509.Certificate) ([]byte, error) {
	priv, ok := privateKey.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("el certificado debe incluir llave privada RSA")
	}
	if leaf == nil {
		return nil, fmt.Errorf("certificado sin hoja X509")
	}

	// 1) Digest del documento canonicalizado, referencia URI="#comprobante"
	canonicalDoc, err := canonicalizeXML(xmlBytes)
	if err != nil {
		canonicalDoc = xmlBytes
	}
	docDigest := sha1.Sum(canonicalDoc)
	docDigestB64 := base64.StdEncoding.EncodeToString(docDigest[:])

	// 2) SignedInfo canonicalizado y firmado con RSA-SHA1
	signedInfoXML := buildSignedInfo(docDigestB64)
	canonicalSignedInfo, err := canonicalizeXML([]byte(signedInfoXML))
	if err != nil {
		canonicalSignedInfo = []byte(signedInfoXML)
	}
	signHash := sha1.Sum(canonicalSignedInfo)
	signatureValue, err := rsa.SignPKCS1v15(nil, priv, crypto.SHA1, signHash[:])
	if err != nil {
		return nil, fmt.Errorf("firmar SignedInfo: %w", err)
	}
	signatureValueB64 := base64.StdEncoding.EncodeToString(signatureValue)

	// 3) KeyInfo + propiedades XAdES (SigningTime, SigningCertificate)
	certB64 := base64.StdEncoding.EncodeToString(leaf.Raw)
	signingTime := time.Now().UTC().Format("2006-01-02T15:04:05Z")
	certDigestB64, issuerName, serial := CertDigestAndIssuerSerial(leaf)
	signatureXML := buildFullSignature(signedInfoXML, signatureValueB64, certB64, signingTime, certDigestB64, issuerName, serial)

	// 4) Inyectar como último hijo de <factura>
	return injectSignature(xmlBytes, signatureXML)
}

func canonicalizeXML(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}

func buildSignedInfo(docDigestB64 string) string {
	uri := "#" + ComprobanteElementID
	var sb strings.Builder
	sb.WriteString(`<ds:SignedInfo xmlns:ds="` + NamespaceDS + `">`)
	sb.WriteString(`<ds:CanonicalizationMethod Algorithm="` + AlgC14N + `"/>`)
	sb.WriteString(`<ds:SignatureMethod Algorithm="` + AlgRSASHA1 + `"/>`)
	sb.WriteString(`<ds:Reference URI="` + uri + `">`)
	sb.WriteString(`<ds:Transforms><ds:Transform Algorithm="` + TransformEnveloped + `"/>`)
	sb.WriteString(`<ds:Transform Algorithm="` + AlgC14N + `"/></ds:Transforms>`)
	sb.WriteString(`<ds:DigestMethod Algorithm="` + AlgSHA1 + `"/>`)
	sb.WriteString(`<ds:DigestValue>` + docDigestB64 + `</ds:DigestValue>`)
	sb.WriteString(`</ds:Reference>`)
	sb.WriteString(`</ds:SignedInfo>`)
	return sb.String()
}

func buildFullSignature(signedInfoXML, signatureValueB64, certB64, signingTime, certDigestB64, issuerName, serial string) string {
	var sb strings.Builder
	sb.WriteString(`<ds:Signature xmlns:ds="` + NamespaceDS + `" xmlns:etsi="` + NamespaceXAdES + `">`)
	sb.WriteString(signedInfoXML)
	sb.WriteString(`<ds:SignatureValue>` + signatureValueB64 + `</ds:SignatureValue>`)
	sb.WriteString(`<ds:KeyInfo><ds:X509Data><ds:X509Certificate>` + certB64 + `</ds:X509Certificate></ds:X509Data></ds:KeyInfo>`)
	sb.WriteString(`<ds:Object><etsi:QualifyingProperties>`)
	sb.WriteString(`<etsi:SignedProperties Id="signed-props">`)
	sb.WriteString(`<etsi:SignedSignatureProperties>`)
	sb.WriteString(`<etsi:SigningTime>` + signingTime + `</etsi:SigningTime>`)
	sb.WriteString(`<etsi:SigningCertificate><etsi:Cert><etsi:CertDigest><ds:DigestMethod Algorithm="` + AlgSHA1 + `"/>`)
	sb.WriteString(`<ds:DigestValue>` + certDigestB64 + `</ds:DigestValue></etsi:CertDigest>`)
	sb.WriteString(`<etsi:IssuerSerial><ds:X509IssuerName>` + escapeXML(issuerName) + `</ds:X509IssuerName><ds:X509SerialNumber>` + serial + `</ds:X509SerialNumber></etsi:IssuerSerial></etsi:Cert></etsi:SigningCertificate>`)
	sb.WriteString(`</etsi:SignedSignatureProperties></etsi:SignedProperties></etsi:QualifyingProperties></ds:Object>`)
	sb.WriteString(`</ds:Signature>`)
	return sb.String()
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

// injectSignature parsea el documento, añade ds:Signature como último hijo
// del elemento raíz y serializa.
func injectSignature(xmlBytes []byte, signatureXML string) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return nil, fmt.Errorf("parsear XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("documento sin raíz")
	}

	sigDoc := etree.NewDocument()
	if err := sigDoc.ReadFromString(signatureXML); err != nil {
		return nil, fmt.Errorf("parsear nodo Signature: %w", err)
	}
	if sigRoot := sigDoc.Root(); sigRoot != nil {
		root.AddChild(sigRoot)
	}

	var out bytes.Buffer
	if _, err := doc.WriteTo(&out); err != nil {
		return nil, fmt.Errorf("serializar XML firmado: %w", err)
	}
	return out.Bytes(), nil
}

var _ billing.Signer = (*XadesSigner)(nil)
