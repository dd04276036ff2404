package signer

// Algoritmos y namespaces de la firma XAdES-BES exigida por el SRI.
const (
	NamespaceDS        = "http://www.w3.org/2000/09/xmldsig#"
	NamespaceXAdES     = "http://uri.etsi.org/01903/v1.3.2#"
	AlgC14N            = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
	AlgRSASHA1         = "http://www.w3.org/2000/09/xmldsig#rsa-sha1"
	AlgSHA1            = "http://www.w3.org/2000/09/xmldsig#sha1"
	TransformEnveloped = "http://www.w3.org/2000/09/xmldsig#enveloped-signature"

	// ComprobanteElementID es el atributo id del elemento raíz que referencia
	// la firma (Reference URI="#comprobante").
	ComprobanteElementID = "comprobante"
)
