// pkg/utils/rusage.go

package utils

import (
	"syscall"
	"time"
)

type Rusage struct {
	syscall.Rusage
}

// GetUtime returns the user CPU time.
func (ru *Rusage) GetUtime() time.Duration {
	return time.Duration(ru.Utime.Nano())
}

// GetStime returns the system CPU time.
func (ru *Rusage) GetStime() time.Duration {
	return time.Duration(ru.Stime.Nano())
}

func GetRusage() *Rusage {
	var ru syscall.Rusage
	_ = syscall.Getrusage(syscall.RUSAGE_SELF, &ru)
	return &Rusage{ru}
}
