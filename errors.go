package somfy

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	ErrMalformedLoginPage = errors.New("malformed login page")
	ErrInvalidAuthCode    = errors.New("invalid authentication code")
	ErrSectionNotFound    = errors.New("section not found")
	ErrPageTooLarge       = errors.New("page too large")
)

type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota
	KindMaxAttempts
	KindIncorrectCode
	KindSessionAlreadyOpen
	KindWrongCredentials
	KindInsufficientRights
)

func (k ErrorKind) String() string {
	switch k {
	case KindMaxAttempts:
		return "Maximum attempts reached"
	case KindIncorrectCode:
		return "Incorrect code"
	case KindSessionAlreadyOpen:
		return "Session already open"
	case KindWrongCredentials:
		return "Wrong login/password"
	case KindInsufficientRights:
		return "Insufficient access rights"
	default:
		return "Unknown error"
	}
}

var vendorCodes = map[string]ErrorKind{
	"(0x0904)": KindMaxAttempts,
	"(0x1100)": KindIncorrectCode,
	"(0x0902)": KindSessionAlreadyOpen,
	"(0x0812)": KindWrongCredentials,
	"(0x0903)": KindInsufficientRights,
}

// VendorError is an error reported by the panel itself, inside an error
// container of the page it served.
type VendorError struct {
	Code string
	Kind ErrorKind
}

func (e *VendorError) Error() string {
	return e.Kind.String()
}

// IsDomainError reports whether err was produced by the panel or by the way
// its pages are laid out, as opposed to a network failure.
func IsDomainError(err error) bool {
	var verr *VendorError
	return errors.Is(err, ErrMalformedLoginPage) ||
		errors.Is(err, ErrInvalidAuthCode) ||
		errors.Is(err, ErrSectionNotFound) ||
		errors.Is(err, ErrUnknownZone) ||
		errors.As(err, &verr)
}

// Classify looks for the panel error container in the given page and returns
// the matching *VendorError, or nil if the page carries no error.
func Classify(r io.Reader) error {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return fmt.Errorf("could not parse page: %w", err)
	}
	return classify(doc.Selection)
}

func classify(sel *goquery.Selection) error {
	container := sel.Find("div.error").First()
	if container.Length() == 0 {
		return nil
	}
	code := strings.TrimSpace(container.Find("b").First().Text())
	kind, ok := vendorCodes[code]
	if !ok {
		log.Warn("unknown panel error", "code", code)
		kind = KindUnknown
	}
	return &VendorError{Code: code, Kind: kind}
}
