package interceptor

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

//counterfeiter:generate . ConstructorInterceptor
//counterfeiter:generate . MethodInterceptor
