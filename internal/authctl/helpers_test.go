package authctl

import (
	"io"
	"os"

	"github.com/dmitrijs2005/azura/internal/server/config"
)

func osStdin() io.Reader { return os.Stdin }

func testDefaults() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	return c
}
