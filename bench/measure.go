package bench

import "time"

// Measure 执行 fn 并返回其结果与耗时。
func Measure[T any](fn func() (T, error)) (T, time.Duration, error) {
	start := time.Now()
	v, err := fn()
	return v, time.Since(start), err
}
