package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("TRINITY_TEST_MODE") == "" {
			_ = os.Setenv("TRINITY_TEST_MODE", "1")
		}
	})
}
