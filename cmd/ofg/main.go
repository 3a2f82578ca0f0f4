package main

import (
	"github.com/Svetankova/oss-fuzz-gen/ofgbin"
)

func main() { ofgbin.Main() }
