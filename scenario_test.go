package pgguard_test

// failDivide panics at a fixed, known call site.
func failDivide() int {
//line m.x:42
	panic("divide by zero")
}
