//go:build !linux

package haps

import "os"

func adviseSequential(*os.File) {}
