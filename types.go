package main

import (
	"image"
)

type Size = image.Point
