package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "Namur", EscapeLike("Namur"))
	assert.Equal(t, `100\%`, EscapeLike("100%"))
	assert.Equal(t, `unit\_name`, EscapeLike("unit_name"))
	assert.Equal(t, `a\\b`, EscapeLike(`a\b`))
	assert.Equal(t, `\%\_\\`, EscapeLike(`%_\`))
	assert.Equal(t, "", EscapeLike(""))
}
