package services

// Messages returned to patrons and librarians. Tests and clients match on
// substrings of these, so keep the wording stable.
const (
	MsgTitleRequired     = "Title is required."
	MsgTitleTooLong      = "Title must be less than 200 characters."
	MsgAuthorRequired    = "Author is required."
	MsgAuthorTooLong     = "Author must be less than 100 characters."
	MsgISBNLength        = "ISBN must be exactly 13 digits."
	MsgISBNSpaces        = "ISBN cannot have spaces."
	MsgISBNDigits        = "ISBN must be digits"
	MsgCopiesPositive    = "Total copies must be a positive integer."
	MsgDuplicateISBN     = "A book with this ISBN already exists."
	MsgAddBookFailed     = "Database error occurred while adding the book."
	MsgCatalogLookupFail = "Database error occurred while reading the catalog."

	MsgInvalidPatronID    = "Invalid patron ID. Must be exactly 6 digits."
	MsgBookNotFound       = "Book not found."
	MsgNotAvailable       = "This book is currently not available."
	MsgAlreadyBorrowed    = "You have already borrowed a copy of this book."
	MsgBorrowLimit        = "You have reached the maximum borrowing limit of 5 books."
	MsgBorrowRecordFailed = "Database error occurred while creating borrow record."
	MsgAvailabilityFailed = "Database error occurred while updating book availability."
	MsgReturnDateFailed   = "Database error occurred while updating book return date."
	MsgRecordsLookupFail  = "Database error occurred while reading borrow records."
	MsgNotBorrowed        = "You have not currently borrowed this book."
	MsgReturnedNoFee      = "You have successfully returned your book. There are no late fees on this book. Thank you!"

	MsgNoLateFees          = "No late fees to pay for this book."
	MsgInvalidTransaction  = "Invalid transaction ID."
	MsgRefundNotPositive   = "Refund amount must be greater than 0."
	MsgRefundExceedsMaxFee = "Refund amount exceeds maximum late fee."

	MsgUnexpectedError = "An unexpected error occurred."
)
