package ogc

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// ServiceError is an OGC exception document flattened into a Go error.
// WMS 1.3.0 answers with ServiceExceptionReport, WCS 2.0.1 with the OWS
// ExceptionReport; both collapse to the same three fields.
type ServiceError struct {
	Code    string
	Locator string
	Message string
}

func (e *ServiceError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "service exception"
	}
	if e.Code == "" {
		return msg
	}
	if e.Locator != "" {
		return fmt.Sprintf("%s (locator %s): %s", e.Code, e.Locator, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

type serviceExceptionReport struct {
	XMLName    xml.Name `xml:"ServiceExceptionReport"`
	Exceptions []struct {
		Code    string `xml:"code,attr"`
		Locator string `xml:"locator,attr"`
		Text    string `xml:",chardata"`
	} `xml:"ServiceException"`
}

type owsExceptionReport struct {
	XMLName    xml.Name `xml:"ExceptionReport"`
	Exceptions []struct {
		Code    string   `xml:"exceptionCode,attr"`
		Locator string   `xml:"locator,attr"`
		Texts   []string `xml:"ExceptionText"`
	} `xml:"Exception"`
}

// ParseException decodes data as either exception dialect. ok is false
// when the document is not an exception report at all, letting callers
// sniff unexpected XML bodies without committing to a dialect first.
func ParseException(data []byte) (*ServiceError, bool) {
	root, err := rootName(data)
	if err != nil {
		return nil, false
	}
	switch root {
	case "ServiceExceptionReport":
		var rep serviceExceptionReport
		if err := xml.Unmarshal(data, &rep); err != nil || len(rep.Exceptions) == 0 {
			return nil, false
		}
		first := rep.Exceptions[0]
		return &ServiceError{
			Code:    first.Code,
			Locator: first.Locator,
			Message: strings.TrimSpace(first.Text),
		}, true
	case "ExceptionReport":
		var rep owsExceptionReport
		if err := xml.Unmarshal(data, &rep); err != nil || len(rep.Exceptions) == 0 {
			return nil, false
		}
		first := rep.Exceptions[0]
		return &ServiceError{
			Code:    first.Code,
			Locator: first.Locator,
			Message: strings.TrimSpace(strings.Join(first.Texts, "; ")),
		}, true
	}
	return nil, false
}

func rootName(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}
