package kitties_test

import (
	"testing"

	"kitty-services/kitties"
	"kitty-services/types"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"
)

func testAccount(t *testing.T) types.AccountID {
	t.Helper()
	u, err := uuid.NewV4()
	require.NoError(t, err)
	return types.AccountID(u)
}

func TestNewDNADeterministic(t *testing.T) {
	owner := testAccount(t)
	random := [32]byte{1, 2, 3}

	first := kitties.NewDNA(owner, random, 0)
	second := kitties.NewDNA(owner, random, 0)
	require.Equal(t, first, second, "identical inputs must produce identical dna")

	differentNonce := kitties.NewDNA(owner, random, 1)
	require.NotEqual(t, first, differentNonce, "distinct sequence context must change the dna")

	differentOwner := kitties.NewDNA(testAccount(t), random, 0)
	require.NotEqual(t, first, differentOwner)
}

func TestCombineDNADeterministic(t *testing.T) {
	a := types.DNA{1}
	b := types.DNA{2}
	random := [32]byte{9}

	first := kitties.CombineDNA(a, b, random, 0)
	second := kitties.CombineDNA(a, b, random, 0)
	require.Equal(t, first, second)

	require.NotEqual(t, first, kitties.CombineDNA(a, b, random, 1))
	require.NotEqual(t, a, first)
	require.NotEqual(t, b, first)
}

func TestSeededSourceReplay(t *testing.T) {
	seed := [32]byte{42}
	one := kitties.NewSeededSource(seed)
	two := kitties.NewSeededSource(seed)

	subject := []byte("subject")
	require.Equal(t, one.Random(subject), two.Random(subject), "same seed and subject must replay the same draw")
	require.NotEqual(t, one.Random(subject), one.Random([]byte("other")))
}
