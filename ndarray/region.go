package ndarray

// CopyRegion copies regionShape elements from src (at srcOffset) into dst
// (at dstOffset). src and dst must share a data type and rank; regionShape
// must fit within both arrays from the given offsets. The innermost
// dimension is copied in bulk when both sides are contiguous there.
func CopyRegion(dst *Array, dstOffset []int64, src *Array, srcOffset []int64, regionShape []int64) {
	itemSize := int64(dst.dtype.Size())
	dstStrides := strides(dst.shape)
	srcStrides := strides(src.shape)

	if len(regionShape) == 0 {
		// Rank-0: exactly one element.
		copy(dst.data[:itemSize], src.data[:itemSize])
		return
	}

	dstStart := int64(0)
	srcStart := int64(0)
	for i := range regionShape {
		dstStart += dstOffset[i] * dstStrides[i]
		srcStart += srcOffset[i] * srcStrides[i]
	}

	var walk func(dim int, dstIdx, srcIdx int64)
	walk = func(dim int, dstIdx, srcIdx int64) {
		if dim == len(regionShape)-1 {
			n := regionShape[dim]
			if dstStrides[dim] == 1 && srcStrides[dim] == 1 {
				byteLen := n * itemSize
				dstByte := dstIdx * itemSize
				srcByte := srcIdx * itemSize
				copy(dst.data[dstByte:dstByte+byteLen], src.data[srcByte:srcByte+byteLen])
				return
			}
			for i := int64(0); i < n; i++ {
				dstByte := (dstIdx + i*dstStrides[dim]) * itemSize
				srcByte := (srcIdx + i*srcStrides[dim]) * itemSize
				copy(dst.data[dstByte:dstByte+itemSize], src.data[srcByte:srcByte+itemSize])
			}
			return
		}
		for i := int64(0); i < regionShape[dim]; i++ {
			walk(dim+1, dstIdx+i*dstStrides[dim], srcIdx+i*srcStrides[dim])
		}
	}
	walk(0, dstStart, srcStart)
}
