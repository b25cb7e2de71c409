package document

func init() {
	register(KindVoid, &ops{
		// A void document accepts no element/text/data operations; every
		// verb that targets one surfaces not-implemented, matching PurC's
		// _pcdoc_void_ops fallback used when no concrete renderer target
		// is attached yet.
	})
}
