//go:build tinygo && stm32f3 && !frames

package main

const framesOutput = false
