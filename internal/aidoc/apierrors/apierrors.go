// Пакет содержит определения ошибок, используемых в приложении aidoc для обработки ситуаций, возникающих при работе с документами, внешним сервисом конвертации и файловым хранилищем.  Каждая ошибка имеет код, статус HTTP и описание, что позволяет удобно обрабатывать исключения и предоставлять информативные сообщения пользователю.
//
// Основные возможности:
//   - Определение типов ошибок, связанных с запросами, документами, конвертацией и файлами.
//   - Предоставление кодов ошибок, соответствующих кодам HTTP статусов.
//   - Включение сообщений об ошибках для удобной обработки и отображения пользователю.
//   - Функция для форматирования сообщений об ошибках с использованием аргументов.
package apierrors

import (
	"fmt"
	"net/http"
	"strings"
)

type DefinedError struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"-"`
	Err        string `json:"error"`
	RuErr      string `json:"ru_error,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

var (
	// 1*** - generic errors
	ErrGeneric            = DefinedError{Code: 1001, StatusCode: http.StatusInternalServerError, Err: "internal server error", RuErr: "Внутренняя ошибка сервера"}
	ErrInvalidRequestBody = DefinedError{Code: 1002, StatusCode: http.StatusBadRequest, Err: "invalid request body", RuErr: "Некорректное тело запроса"}
	ErrValidation         = DefinedError{Code: 1003, StatusCode: http.StatusBadRequest, Err: "validation failed: %s", RuErr: "Ошибка валидации: %s"}

	// 2*** - document errors
	ErrDocumentNotFound     = DefinedError{Code: 2001, StatusCode: http.StatusNotFound, Err: "document not found", RuErr: "Документ не найден"}
	ErrDocumentBadContent   = DefinedError{Code: 2002, StatusCode: http.StatusBadRequest, Err: "invalid document content", RuErr: "Некорректное содержимое документа"}
	ErrDocumentRenderFailed = DefinedError{Code: 2003, StatusCode: http.StatusInternalServerError, Err: "failed to render document", RuErr: "Не удалось отобразить документ"}
	ErrDocumentNodeNotFound = DefinedError{Code: 2004, StatusCode: http.StatusNotFound, Err: "document node not found", RuErr: "Нода документа не найдена"}

	// 3*** - conversion errors
	ErrNotPDF             = DefinedError{Code: 3001, StatusCode: http.StatusBadRequest, Err: "Please upload a PDF file", RuErr: "Пожалуйста, загрузите PDF файл"}
	ErrConversionFailed   = DefinedError{Code: 3002, StatusCode: http.StatusBadGateway, Err: "conversion failed: %s", RuErr: "Ошибка конвертации: %s"}
	ErrConversionBusy     = DefinedError{Code: 3003, StatusCode: http.StatusConflict, Err: "upload already in progress", RuErr: "Загрузка уже выполняется"}
	ErrConversionBadReply = DefinedError{Code: 3004, StatusCode: http.StatusBadGateway, Err: "conversion service returned invalid document", RuErr: "Сервис конвертации вернул некорректный документ"}

	// 4*** - file errors
	ErrAssetNotFound     = DefinedError{Code: 4001, StatusCode: http.StatusNotFound, Err: "file not found", RuErr: "Файл не найден"}
	ErrAssetUploadFailed = DefinedError{Code: 4002, StatusCode: http.StatusInternalServerError, Err: "failed to store file", RuErr: "Не удалось сохранить файл"}
)

func (e DefinedError) WithFormattedMessage(args ...interface{}) DefinedError {
	if len(args) > 0 {
		e.Err = fmt.Sprintf(e.Err, args...)
		e.RuErr = fmt.Sprintf(e.RuErr, args...)
	} else {
		e.Err = strings.Replace(e.Err, "%s", "", -1)
		e.RuErr = strings.Replace(e.RuErr, "%s", "", -1)
	}
	return e
}
