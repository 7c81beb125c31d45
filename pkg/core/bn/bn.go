// Package bn implements the three elliptic-curve BN syscalls the
// off-chain generator exposes to contracts: point addition, scalar
// multiplication, and a pairing check, over the same curve (BN254) and
// fixed input/output sizes alt_bn128 precompiles use elsewhere in the
// ecosystem. Only the off-chain dao.View calls into this package: per
// spec §4.3/§9, bn_add/bn_mul/bn_pairing return Unimplemented on-chain.
package bn

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/godwoken-go/godwoken/pkg/gwerr"
)

const (
	addInputLen = 64 // one G1 point, x||y at 32B each (see decodePoint); Add takes two
	mulInputLen = 64
)

func decodeScalar(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

func decodePoint(b [64]byte) (bn254.G1Affine, error) {
	var p bn254.G1Affine
	var x, y fp.Element
	x.SetBytes(b[0:32])
	y.SetBytes(b[32:64])
	p.X = x
	p.Y = y
	if !p.IsOnCurve() {
		return bn254.G1Affine{}, gwerr.New(gwerr.InvalidData)
	}
	return p, nil
}

func encodePoint(p bn254.G1Affine) []byte {
	out := make([]byte, 64)
	xb := p.X.Bytes()
	yb := p.Y.Bytes()
	copy(out[0:32], xb[:])
	copy(out[32:64], yb[:])
	return out
}

// Add computes the elliptic-curve sum of two 64-byte-encoded G1 points,
// returning a 64-byte-encoded point.
func Add(input []byte) ([]byte, error) {
	if len(input) != addInputLen*2 {
		return nil, gwerr.New(gwerr.BufferOverflow)
	}
	var a, b [64]byte
	copy(a[:], input[0:64])
	copy(b[:], input[64:128])
	pa, err := decodePoint(a)
	if err != nil {
		return nil, err
	}
	pb, err := decodePoint(b)
	if err != nil {
		return nil, err
	}
	var res bn254.G1Jac
	var ja, jb bn254.G1Jac
	ja.FromAffine(&pa)
	jb.FromAffine(&pb)
	res.Set(&ja).AddAssign(&jb)
	var out bn254.G1Affine
	out.FromJacobian(&res)
	return encodePoint(out), nil
}

// Mul computes scalar*point for a 64-byte-encoded G1 point and a 32-byte
// big-endian scalar, returning a 64-byte-encoded point.
func Mul(input []byte) ([]byte, error) {
	if len(input) != mulInputLen+32 {
		return nil, gwerr.New(gwerr.BufferOverflow)
	}
	var p [64]byte
	copy(p[:], input[0:64])
	pt, err := decodePoint(p)
	if err != nil {
		return nil, err
	}
	scalar := decodeScalar(input[64:96])
	var jp bn254.G1Jac
	jp.FromAffine(&pt)
	jp.ScalarMultiplication(&jp, scalar)
	var out bn254.G1Affine
	out.FromJacobian(&jp)
	return encodePoint(out), nil
}

// Pairing reads input as a sequence of 192-byte (G1, G2) pairs and checks
// e(a1,a2)*e(b1,b2)*...==1; the fixed 32-byte output reports only the
// boolean result (last byte 1 on success, all zero on failure).
func Pairing(input []byte) ([]byte, error) {
	if len(input)%192 != 0 {
		return nil, gwerr.New(gwerr.BufferOverflow)
	}
	n := len(input) / 192
	g1s := make([]bn254.G1Affine, n)
	g2s := make([]bn254.G2Affine, n)
	for i := 0; i < n; i++ {
		off := i * 192
		var p [64]byte
		copy(p[:], input[off:off+64])
		g1, err := decodePoint(p)
		if err != nil {
			return nil, err
		}
		g1s[i] = g1

		var x0, x1, y0, y1 fp.Element
		x0.SetBytes(input[off+64 : off+96])
		x1.SetBytes(input[off+96 : off+128])
		y0.SetBytes(input[off+128 : off+160])
		y1.SetBytes(input[off+160 : off+192])
		g2s[i].X.A0 = x0
		g2s[i].X.A1 = x1
		g2s[i].Y.A0 = y0
		g2s[i].Y.A1 = y1
	}

	ok, err := bn254.PairingCheck(g1s, g2s)
	if err != nil {
		return nil, gwerr.Wrap(gwerr.InvalidData, err)
	}
	out := make([]byte, 32)
	if ok {
		out[31] = 1
	}
	return out, nil
}
