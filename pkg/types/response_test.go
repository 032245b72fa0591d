package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvelopeJSONShape(t *testing.T) {
	b, err := json.Marshal(Success([]int64{1, 2}))
	require.NoError(t, err)
	require.JSONEq(t, `{"message":"success","data":[1,2]}`, string(b))

	b, err = json.Marshal(Success(true))
	require.NoError(t, err)
	require.JSONEq(t, `{"message":"success","data":true}`, string(b))

	b, err = json.Marshal(Failure("cart not found"))
	require.NoError(t, err)
	require.JSONEq(t, `{"message":"cart not found","data":null}`, string(b))
}
