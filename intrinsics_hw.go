package main

// Hardware-binding intrinsic family (§4.7 "Optional families"). These
// address GPIO pins and an ADC that only exist on the microcontroller
// target the compiler side can produce code for; on this host there is no
// hardware to bind to, so the table carries the ids with nil fn and
// callIntrinsic turns a call into a class-2 fault rather than silently
// returning zero. A future host-specific build tag could fill these in
// against a real peripheral driver without touching any other family.

func init() {
	registerIntrinsic(IHwGpioRead, "hw_gpio_read", RetInt, 1, nil)
	registerIntrinsic(IHwGpioWrite, "hw_gpio_write", RetVoid, 2, nil)
	registerIntrinsic(IHwAdcRead, "hw_adc_read", RetInt, 1, nil)
}
