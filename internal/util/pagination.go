package util

const DefaultPageSize = 12

func Paginate(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = DefaultPageSize
	}
	offset = (page - 1) * size
	return offset, size
}
