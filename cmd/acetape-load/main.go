package main

import (
	acetape "github.com/doismellburning/acetape/src"
)

func main() {
	acetape.LoadMain()
}
