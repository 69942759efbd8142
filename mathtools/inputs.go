package mathtools

// TwoIntegers is the input of the binary integer tools.
type TwoIntegers struct {
	A int64 `json:"a" jsonschema:"description=First operand"`
	B int64 `json:"b" jsonschema:"description=Second operand"`
}

// OneInteger is the input of the unary integer tools.
type OneInteger struct {
	A int64 `json:"a" jsonschema:"description=Operand"`
}

// OneNumber is the input of the unary float tools.
type OneNumber struct {
	A float64 `json:"a" jsonschema:"description=Operand"`
}

// FactorialInput is the input of factorial.
type FactorialInput struct {
	A int64 `json:"a" validate:"gte=0,lte=20" jsonschema:"description=Non-negative integer up to 20"`
}

// FibonacciInput is the input of fibonacci_numbers.
type FibonacciInput struct {
	N int64 `json:"n" validate:"gte=0,lte=92" jsonschema:"description=Count of numbers"`
}

// StringInput is the input of strings_to_chars_to_int.
type StringInput struct {
	String string `json:"string" validate:"required" jsonschema:"description=Text to convert"`
}

// ValidateCharsInput is the input of validate_strings_to_chars_to_int.
type ValidateCharsInput struct {
	String  string  `json:"string" validate:"required" jsonschema:"description=Text that was converted"`
	IntList []int64 `json:"int_list" jsonschema:"description=Expected character codes"`
}

// IntListInput is the input of int_list_to_exponential_sum.
type IntListInput struct {
	IntList []int64 `json:"int_list" validate:"required" jsonschema:"description=Integers to sum"`
}

// MailInput is the input of call_send_gmail.
type MailInput struct {
	To      string `json:"to" validate:"required,email" jsonschema:"description=Recipient address"`
	Subject string `json:"subject" jsonschema:"description=Subject line"`
	Body    string `json:"body" jsonschema:"description=Message body"`
}
