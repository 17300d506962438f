package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/gompdf/claimpacket/pkg/claim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	st := New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	st.AddClaim(claim.Claim{ID: "c1", OwnerID: "u1"})
	st.AddArea("c1", "a1", "Garage")
	st.AddDamageItem(claim.DamageItem{ID: "late", ClaimID: "c1", CreatedAt: base.Add(time.Hour)})
	st.AddDamageItem(claim.DamageItem{ID: "early", ClaimID: "c1", CreatedAt: base})
	st.AddEvidence(claim.Evidence{ID: "e1", ClaimID: "c1", CreatedAt: base})
	st.AddEvidence(claim.Evidence{ID: "e2", ClaimID: "c1", CreatedAt: base})
	st.PutResource("c1/a.png", []byte("png"))

	_, err := st.GetClaim(ctx, "c1", "u2")
	assert.ErrorIs(t, err, claim.ErrNotFound)

	items, err := st.ListDamageItems(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "early", items[0].ID)

	evidence, err := st.ListEvidence(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, []string{evidence[0].ID, evidence[1].ID})

	areas, err := st.ListAreas(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Garage", areas.Name("a1"))

	data, err := st.FetchResource(ctx, "c1/a.png")
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	_, err = st.FetchResource(ctx, "c1/missing.png")
	assert.ErrorIs(t, err, claim.ErrResourceFetch)
}
