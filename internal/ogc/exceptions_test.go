package ogc

import (
	"strings"
	"testing"
)

func TestParseException_WMSDialect(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<ServiceExceptionReport version="1.3.0" xmlns="http://www.opengis.net/ogc">
  <ServiceException code="LayerNotDefined" locator="LAYERS">
    Layer "NO.SUCH" given in LAYERS parameter is not offered.
  </ServiceException>
</ServiceExceptionReport>`

	svcErr, ok := ParseException([]byte(doc))
	if !ok {
		t.Fatalf("expected an exception report")
	}
	if svcErr.Code != "LayerNotDefined" {
		t.Fatalf("code = %q", svcErr.Code)
	}
	if svcErr.Locator != "LAYERS" {
		t.Fatalf("locator = %q", svcErr.Locator)
	}
	if !strings.Contains(svcErr.Message, "not offered") {
		t.Fatalf("message = %q", svcErr.Message)
	}
	if !strings.Contains(svcErr.Error(), "LayerNotDefined") {
		t.Fatalf("Error() = %q", svcErr.Error())
	}
}

func TestParseException_OWSDialect(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<ows:ExceptionReport xmlns:ows="http://www.opengis.net/ows/2.0" version="2.0.1">
  <ows:Exception exceptionCode="NoSuchCoverage" locator="coverageid">
    <ows:ExceptionText>COVERAGE NO.SUCH does not exist.</ows:ExceptionText>
  </ows:Exception>
</ows:ExceptionReport>`

	svcErr, ok := ParseException([]byte(doc))
	if !ok {
		t.Fatalf("expected an exception report")
	}
	if svcErr.Code != "NoSuchCoverage" {
		t.Fatalf("code = %q", svcErr.Code)
	}
	if svcErr.Locator != "coverageid" {
		t.Fatalf("locator = %q", svcErr.Locator)
	}
	if svcErr.Message != "COVERAGE NO.SUCH does not exist." {
		t.Fatalf("message = %q", svcErr.Message)
	}
}

func TestParseException_NotAnException(t *testing.T) {
	if _, ok := ParseException([]byte(wmsCapabilitiesDoc)); ok {
		t.Fatalf("capabilities document misread as exception")
	}
	if _, ok := ParseException([]byte("plain text body")); ok {
		t.Fatalf("plain text misread as exception")
	}
	if _, ok := ParseException(nil); ok {
		t.Fatalf("empty body misread as exception")
	}
}

func TestServiceError_ErrorFormats(t *testing.T) {
	cases := []struct {
		err  ServiceError
		want string
	}{
		{ServiceError{Code: "NoSuchCoverage", Locator: "coverageid", Message: "missing"}, "NoSuchCoverage (locator coverageid): missing"},
		{ServiceError{Code: "InvalidParameterValue", Message: "bad width"}, "InvalidParameterValue: bad width"},
		{ServiceError{Message: "only text"}, "only text"},
		{ServiceError{}, "service exception"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Fatalf("Error() = %q, want %q", got, tc.want)
		}
	}
}
