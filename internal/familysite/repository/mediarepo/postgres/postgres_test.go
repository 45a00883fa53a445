package postgres

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEscapeLike(t *testing.T) {
	require.Equal(t, `The Day of the Doctor`, escapeLike("The Day of the Doctor"))
	require.Equal(t, `100\% \_draft\\`, escapeLike(`100% _draft\`))
}
