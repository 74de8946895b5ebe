package main

import (
	"fmt"
	"reflect"

	"github.com/kpfaulkner/cabac-go/ctxselect"
	"github.com/kpfaulkner/cabac-go/entropy"
	"github.com/kpfaulkner/cabac-go/sequence"
)

// displays sizes of the per coder structs to spot padding waste. ProbModel
// matters most, a bank holds one per context.
func memStats(input any) {

	rType := reflect.TypeOf(input)
	fmt.Printf("Size of %s : %d bytes\n", rType.Name(), rType.Size())

	if rType.Kind() == reflect.Struct {
		for i := 0; i < rType.NumField(); i++ {
			field := rType.Field(i)
			fmt.Printf("  Name %s\n", field.Name)
			fmt.Printf("    Offset of    : %d bytes\n", field.Offset)
			fmt.Printf("    Size of      : %d bytes\n", field.Type.Size())
			fmt.Printf("    Alignment of : %d bytes\n", field.Type.Align())
			fmt.Println()
		}
	}
}

func main() {
	memStats(entropy.ProbModel{})
	memStats(entropy.BinEncoder{})
	memStats(entropy.BinDecoder{})
	memStats(ctxselect.Selector{})
	memStats(sequence.Encoder{})
}
