package pixel

import (
	"crypto/rand"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

func randKey(t *testing.T) *btcec.PrivateKey {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return priv
}

func TestTweakDeterministic(t *testing.T) {
	t.Parallel()

	priv := randKey(t)
	chroma := Chroma{1, 2, 3}
	luma := Luma(1000)

	a := Tweak(priv.PubKey(), chroma, luma)
	b := Tweak(priv.PubKey(), chroma, luma)

	require.True(t, a.IsEqual(b))
}

func TestTweakVariesWithPixel(t *testing.T) {
	t.Parallel()

	priv := randKey(t)
	chroma := Chroma{1, 2, 3}

	a := Tweak(priv.PubKey(), chroma, Luma(1000))
	b := Tweak(priv.PubKey(), chroma, Luma(1001))

	require.False(t, a.IsEqual(b))
}

func TestTweakXOnlyMatchesCompressedXCoord(t *testing.T) {
	t.Parallel()

	priv := randKey(t)
	chroma := Chroma{9, 9, 9}
	luma := Luma(42)

	xonly := TweakXOnly(priv.PubKey(), chroma, luma)
	compressed := TweakCompressed(priv.PubKey(), chroma, luma)

	require.Equal(t, compressed[1:], xonly[:])
}

func TestPedersenCommitHomomorphic(t *testing.T) {
	t.Parallel()

	var blind1, blind2 [32]byte
	_, err := rand.Read(blind1[:])
	require.NoError(t, err)
	_, err = rand.Read(blind2[:])
	require.NoError(t, err)

	c1 := PedersenCommit(Luma(100), blind1)
	c2 := PedersenCommit(Luma(200), blind2)

	sum, err := c1.Add(c2)
	require.NoError(t, err)

	// The sum of commitments to 100 and 200 should equal the
	// commitment to 300 with the summed blinding factor, modulo curve
	// order reduction of the blinding sum — verified indirectly by
	// reconstructing via the same path.
	var combinedBlind [32]byte
	var s1, s2, sCombined btcec.ModNScalar
	s1.SetByteSlice(blind1[:])
	s2.SetByteSlice(blind2[:])
	sCombined.Add2(&s1, &s2)
	b := sCombined.Bytes()
	copy(combinedBlind[:], b[:])

	expected := PedersenCommit(Luma(300), combinedBlind)
	require.True(t, sum.Equal(expected))
}
