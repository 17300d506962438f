package claimpacket

import (
	"github.com/gompdf/claimpacket/pkg/api"
	"github.com/gompdf/claimpacket/pkg/claim"
)

type Generator = api.Generator
type Options = api.Options
type Option = api.Option
type Packet = api.Packet
type Report = api.Report
type EntryResult = api.EntryResult
type WrapMode = api.WrapMode

type Fetcher = claim.Fetcher
type RecordStore = claim.RecordStore
type ResourceStore = claim.ResourceStore
type Snapshot = claim.Snapshot

func New(fetcher Fetcher) *Generator { return api.New(fetcher) }
func NewWithOptions(fetcher Fetcher, options Options) *Generator {
	return api.NewWithOptions(fetcher, options)
}
func DefaultOptions() Options { return api.DefaultOptions() }

var (
	WithPageSize          = api.WithPageSize
	WithMargins           = api.WithMargins
	WithLineGap           = api.WithLineGap
	WithWrapMode          = api.WithWrapMode
	WithPrefetchWindow    = api.WithPrefetchWindow
	WithFetchRetries      = api.WithFetchRetries
	WithMaxImageDimension = api.WithMaxImageDimension
	WithMaxImagePixels    = api.WithMaxImagePixels
	WithFonts             = api.WithFonts
	WithTitle             = api.WithTitle
	WithAuthor            = api.WithAuthor
	WithSubject           = api.WithSubject
	WithKeywords          = api.WithKeywords
	WithCreationDate      = api.WithCreationDate
	WithLogger            = api.WithLogger
	WithPageSizeA4        = api.WithPageSizeA4
	WithPageSizeLetter    = api.WithPageSizeLetter
	WithPageSizeLegal     = api.WithPageSizeLegal
)

const (
	PageSizeA4Width      = api.PageSizeA4Width
	PageSizeA4Height     = api.PageSizeA4Height
	PageSizeLetterWidth  = api.PageSizeLetterWidth
	PageSizeLetterHeight = api.PageSizeLetterHeight
	PageSizeLegalWidth   = api.PageSizeLegalWidth
	PageSizeLegalHeight  = api.PageSizeLegalHeight

	WrapChars   = api.WrapChars
	WrapMetrics = api.WrapMetrics
)

var (
	ErrUnauthorized  = claim.ErrUnauthorized
	ErrNotFound      = claim.ErrNotFound
	ErrResourceFetch = claim.ErrResourceFetch
	ErrDecode        = claim.ErrDecode
)
