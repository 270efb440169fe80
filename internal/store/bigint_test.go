package store

import "math/big"

func bigFromInt(v int64) *big.Int {
	return big.NewInt(v)
}
