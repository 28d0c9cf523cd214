//go:build !sdl2

package sdl2

import (
	"fmt"

	"github.com/kvnbkr/pocketgb/internal/console"
)

// Run reports that the binary was built without SDL2 support.
func Run(con *console.Console) error {
	return fmt.Errorf("sdl2 frontend not available - build with -tags sdl2 to enable")
}
