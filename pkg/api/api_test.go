package api

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/gompdf/claimpacket/internal/layout"
	"github.com/gompdf/claimpacket/internal/pagination"
	"github.com/gompdf/claimpacket/internal/store/memstore"
	"github.com/gompdf/claimpacket/pkg/claim"
	pdfcpuapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var created = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func testImage(t *testing.T, w, h int, format string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 3), G: uint8(y * 3), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if format == "jpeg" {
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	} else {
		require.NoError(t, png.Encode(&buf, img))
	}
	return buf.Bytes()
}

// fixture is a claim owned by u1 with evidence [A image, B pdf, C image]
func fixture(t *testing.T) *memstore.Store {
	t.Helper()
	st := memstore.New()
	st.AddClaim(claim.Claim{
		ID:        "c1",
		OwnerID:   "u1",
		Title:     "Kitchen flood",
		LossDate:  time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
		LossCause: "Burst pipe",
		Location:  "12 Harbor Lane",
	})
	st.AddArea("c1", "a1", "Kitchen")

	cost := 1200.0
	st.AddDamageItem(claim.DamageItem{
		ID: "d1", ClaimID: "c1", AreaID: "a1", Category: "Flooring", Description: "Laminate",
		Quantity: 180, Unit: "sqft", ConditionNotes: "Swollen at every seam near the dishwasher",
		EstReplacementCost: &cost, CreatedAt: created,
	})
	st.AddDamageItem(claim.DamageItem{
		ID: "d2", ClaimID: "c1", AreaID: "gone", Category: "Cabinet", Description: "Sink base",
		Quantity: 1, Unit: "ea", CreatedAt: created.Add(time.Minute),
	})

	st.PutResource("c1/a.jpg", testImage(t, 80, 60, "jpeg"))
	st.PutResource("c1/b.pdf", []byte("%PDF-1.4"))
	st.PutResource("c1/c.png", testImage(t, 50, 50, "png"))
	st.AddEvidence(claim.Evidence{ID: "A", ClaimID: "c1", Path: "c1/a.jpg", MIMEType: "image/jpeg", Caption: "Floor", CreatedAt: created})
	st.AddEvidence(claim.Evidence{ID: "B", ClaimID: "c1", Path: "c1/b.pdf", MIMEType: "application/pdf", CreatedAt: created.Add(time.Minute)})
	st.AddEvidence(claim.Evidence{ID: "C", ClaimID: "c1", Path: "c1/c.png", MIMEType: "image/png", CreatedAt: created.Add(2 * time.Minute)})
	return st
}

func newTestGenerator(f claim.Fetcher, opts ...Option) *Generator {
	g := New(f).WithOption(WithFetchRetries(0, 0))
	for _, opt := range opts {
		g.WithOption(opt)
	}
	return g
}

func layoutOf(t *testing.T, g *Generator, ownerID string) ([]*pagination.Page, *Report) {
	t.Helper()
	snap, err := claim.FetchSnapshot(context.Background(), g.fetcher, "c1", ownerID)
	require.NoError(t, err)
	pages, report, err := g.layout(context.Background(), snap)
	require.NoError(t, err)
	return pages, report
}

func texts(page *pagination.Page) []string {
	var out []string
	for _, b := range page.Boxes {
		if tb, ok := b.(*layout.TextBox); ok {
			out = append(out, tb.Text)
		}
	}
	return out
}

func images(pages []*pagination.Page) []*layout.ImageBox {
	var out []*layout.ImageBox
	for _, p := range pages {
		for _, b := range p.Boxes {
			if ib, ok := b.(*layout.ImageBox); ok {
				out = append(out, ib)
			}
		}
	}
	return out
}

func evidenceIDs(entries []EntryResult) []string {
	var ids []string
	for _, e := range entries {
		ids = append(ids, e.EvidenceID)
	}
	return ids
}

func pdfPageCount(t *testing.T, data []byte) int {
	t.Helper()
	ctx, err := pdfcpuapi.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	require.NoError(t, err)
	return ctx.PageCount
}

func TestGenerate(t *testing.T) {
	g := newTestGenerator(fixture(t))

	packet, err := g.Generate(context.Background(), "c1", "u1")
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", packet.ContentType)
	assert.Equal(t, "claim-packet-c1.pdf", packet.Filename)
	assert.True(t, bytes.HasPrefix(packet.Data, []byte("%PDF-")))
	assert.Equal(t, 2, packet.Report.Pages)
	assert.Equal(t, packet.Report.Pages, pdfPageCount(t, packet.Data))
	assert.Equal(t, 2, packet.Report.Items)
}

func TestGenerateRequiresOwner(t *testing.T) {
	_, err := newTestGenerator(fixture(t)).Generate(context.Background(), "c1", "")
	assert.ErrorIs(t, err, claim.ErrUnauthorized)
}

func TestGenerateOtherOwnerIsNotFound(t *testing.T) {
	g := newTestGenerator(fixture(t))

	_, err := g.Generate(context.Background(), "c1", "u2")
	assert.ErrorIs(t, err, claim.ErrNotFound)

	_, err = g.Generate(context.Background(), "missing", "u1")
	assert.ErrorIs(t, err, claim.ErrNotFound)
}

func TestTextSection(t *testing.T) {
	pages, _ := layoutOf(t, newTestGenerator(fixture(t)), "u1")
	require.Len(t, pages, 2)

	first := texts(pages[0])
	assert.Equal(t, []string{
		"Claim Copilot - Claim Packet",
		"Title: Kitchen flood",
		"Loss Date: 2024-02-28",
		"Cause: Burst pipe",
		"Location: 12 Harbor Lane",
		"Narrative:",
		"No narrative",
		"Damage Inventory",
		"Area | Category | Description | Qty | Notes | Est. Cost",
		"Kitchen | Flooring | Laminate | 180 sqft | Swollen at every seam near t | $1,200.00",
		"Unknown | Cabinet | Sink base | 1 ea |  | $0.00",
	}, first)

	title := pages[0].Boxes[0].(*layout.TextBox)
	assert.Equal(t, 40.0, title.X)
	assert.Equal(t, 760.0, title.Y)
	assert.Equal(t, 18.0, title.Size)
	assert.True(t, title.Bold)

	// 18+8 below the title
	assert.Equal(t, 734.0, pages[0].Boxes[1].GetY())
}

func TestAppendixOrder(t *testing.T) {
	pages, report := layoutOf(t, newTestGenerator(fixture(t)), "u1")

	assert.Equal(t, []string{"A", "C"}, evidenceIDs(report.Placed()))
	assert.Empty(t, report.Skipped())
	assert.Equal(t, 0, report.Entries[0].Index)
	assert.Equal(t, 1, report.Entries[1].Index)

	appendix := pages[1]
	heading := appendix.Boxes[0].(*layout.TextBox)
	assert.Equal(t, "Photo Appendix", heading.Text)
	assert.Equal(t, 16.0, heading.Size)

	imgs := images(pages)
	require.Len(t, imgs, 2)

	// A: 80x60 fitted to 160x120, top at 760-(16+8)
	assert.Equal(t, "JPG", imgs[0].Type)
	assert.Equal(t, 40.0, imgs[0].X)
	assert.Equal(t, 736.0, imgs[0].Y)
	assert.Equal(t, 160.0, imgs[0].Width)
	assert.Equal(t, 120.0, imgs[0].Height)

	// C starts one 180pt row lower
	assert.Equal(t, "PNG", imgs[1].Type)
	assert.Equal(t, 556.0, imgs[1].Y)
	assert.Equal(t, 160.0, imgs[1].Height)

	captions := texts(appendix)[1:]
	assert.Equal(t, []string{"Floor", "No caption"}, captions)
	caption := appendix.Boxes[2].(*layout.TextBox)
	assert.Equal(t, 220.0, caption.X)
	assert.Equal(t, 716.0, caption.Y)
	assert.Equal(t, 10.0, caption.Size)
}

func TestFailedEvidenceIsSkipped(t *testing.T) {
	st := fixture(t)
	st.PutResource("c1/a.jpg", []byte("not a jpeg at all"))

	g := newTestGenerator(st)
	packet, err := g.Generate(context.Background(), "c1", "u1")
	require.NoError(t, err)

	assert.Equal(t, []string{"C"}, evidenceIDs(packet.Report.Placed()))
	skipped := packet.Report.Skipped()
	require.Len(t, skipped, 1)
	assert.Equal(t, "A", skipped[0].EvidenceID)
	assert.ErrorIs(t, skipped[0].Err, claim.ErrDecode)
	assert.Equal(t, 2, pdfPageCount(t, packet.Data))
}

func TestOversizedEvidenceIsSkipped(t *testing.T) {
	// A is 80x60, C is 50x50
	g := newTestGenerator(fixture(t), WithMaxImagePixels(3000))

	_, report := layoutOf(t, g, "u1")

	assert.Equal(t, []string{"C"}, evidenceIDs(report.Placed()))
	skipped := report.Skipped()
	require.Len(t, skipped, 1)
	assert.Equal(t, "A", skipped[0].EvidenceID)
	assert.ErrorIs(t, skipped[0].Err, claim.ErrDecode)
}

func TestMissingEvidenceIsSkipped(t *testing.T) {
	st := fixture(t)
	st.AddEvidence(claim.Evidence{ID: "D", ClaimID: "c1", Path: "c1/nowhere.png", MIMEType: "image/png", CreatedAt: created.Add(-time.Hour)})

	pages, report := layoutOf(t, newTestGenerator(st), "u1")

	assert.Equal(t, []string{"D", "A", "C"}, evidenceIDs(report.Entries))
	assert.Equal(t, []string{"A", "C"}, evidenceIDs(report.Placed()))
	assert.ErrorIs(t, report.Entries[0].Err, claim.ErrResourceFetch)
	// the skipped entry leaves no gap
	assert.Equal(t, 736.0, images(pages)[0].Y)
}

func TestImagesBreakPages(t *testing.T) {
	st := fixture(t)
	for i, id := range []string{"E", "F"} {
		path := "c1/" + id + ".png"
		st.PutResource(path, testImage(t, 80, 60, "png"))
		st.AddEvidence(claim.Evidence{ID: id, ClaimID: "c1", Path: path, MIMEType: "image/png", CreatedAt: created.Add(time.Duration(10+i) * time.Minute)})
	}

	pages, report := layoutOf(t, newTestGenerator(st), "u1")

	// rows at 736, 556 and 372; the fourth needs 180pt below 192 and moves on
	require.Len(t, pages, 3)
	placed := report.Placed()
	require.Len(t, placed, 4)
	assert.Equal(t, []int{2, 2, 2, 3}, []int{placed[0].Page, placed[1].Page, placed[2].Page, placed[3].Page})
	assert.Equal(t, 760.0, images(pages)[3].Y)
}

func TestLongInventoryPaginates(t *testing.T) {
	st := fixture(t)
	for i := 0; i < 120; i++ {
		st.AddDamageItem(claim.DamageItem{
			ID: "x", ClaimID: "c1", AreaID: "a1", Category: "Contents",
			Description: strings.Repeat("item ", 30), Quantity: 1, Unit: "ea",
			CreatedAt: created.Add(time.Hour + time.Duration(i)*time.Second),
		})
	}

	g := newTestGenerator(st)
	packet, err := g.Generate(context.Background(), "c1", "u1")
	require.NoError(t, err)
	assert.Greater(t, packet.Report.Pages, 3)
	assert.Equal(t, packet.Report.Pages, pdfPageCount(t, packet.Data))

	pages, _ := layoutOf(t, g, "u1")
	for _, p := range pages {
		for _, b := range p.Boxes {
			if tb, ok := b.(*layout.TextBox); ok {
				assert.GreaterOrEqual(t, tb.Y, 60.0)
				assert.LessOrEqual(t, tb.Y, 760.0)
			}
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	g := newTestGenerator(fixture(t), WithCreationDate(created))

	a, err := g.Generate(context.Background(), "c1", "u1")
	require.NoError(t, err)
	b, err := g.Generate(context.Background(), "c1", "u1")
	require.NoError(t, err)

	assert.Equal(t, a.Data, b.Data)

	pa, _ := layoutOf(t, g, "u1")
	pb, _ := layoutOf(t, g, "u1")
	assert.Equal(t, pa, pb)
}

func TestNarrativeLineBreaks(t *testing.T) {
	st := fixture(t)
	st.AddClaim(claim.Claim{
		ID: "c1", OwnerID: "u1", Title: "Kitchen flood",
		Narrative: "Water came in overnight.\n\nAdjuster visited on 3/2.",
	})

	pages, _ := layoutOf(t, newTestGenerator(st), "u1")

	first := texts(pages[0])
	i := indexOf(first, "Narrative:")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, []string{"Water came in overnight.", "Adjuster visited on 3/2.", "Damage Inventory"}, first[i+1:i+4])
}

func indexOf(lines []string, s string) int {
	for i, l := range lines {
		if l == s {
			return i
		}
	}
	return -1
}

func TestGenerateMetricWrapping(t *testing.T) {
	st := fixture(t)
	st.AddClaim(claim.Claim{
		ID: "c1", OwnerID: "u1", Title: "Kitchen flood",
		Narrative: strings.Repeat("The water spread quickly across the floor. ", 20),
	})

	g := newTestGenerator(st, WithWrapMode(WrapMetrics))
	pages, _ := layoutOf(t, g, "u1")

	first := texts(pages[0])
	assert.Greater(t, len(first), 12, "narrative wraps onto several lines")

	packet, err := g.Generate(context.Background(), "c1", "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, pdfPageCount(t, packet.Data))
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestGenerator(fixture(t)).Generate(ctx, "c1", "u1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "claim-packet-0b6f.pdf", Filename("0b6f"))
	assert.Equal(t, "claim-packet-a-b-c.pdf", Filename("a/b\"c"))
}
