package dataset

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/sortwise-cli/internal/utils"
)

// Format renders seq as one integer per line.
func Format(seq []int) []byte {
	buf := make([]byte, 0, len(seq)*6)
	for _, v := range seq {
		buf = strconv.AppendInt(buf, int64(v), 10)
		buf = append(buf, '\n')
	}
	return buf
}

// WriteFile stores seq at path, compressing by extension. The write is atomic.
func WriteFile(path string, seq []int) error {
	data, err := CodecFor(path).Compress(Format(seq))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return utils.SafeWriteFile(path, data)
}
